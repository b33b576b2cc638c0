package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MyGens/internal/notify"
	"MyGens/internal/repo"
)

func TestRunResolvesTicket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, db, err := repo.Open(ctx, repo.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	tk, err := store.CreateTicket(ctx, repo.Ticket{Name: "Ana", Email: "ana@example.com", Message: "help"})
	require.NoError(t, err)

	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/getUpdates") {
			w.Write([]byte(`{"ok":true,"result":true}`))
			return
		}
		if polls.Add(1) > 1 {
			cancel()
			w.Write([]byte(`{"ok":true,"result":[]}`))
			return
		}
		updates := []notify.Update{{
			UpdateID: 7,
			CallbackQuery: &notify.CallbackQuery{
				ID:      "cb1",
				Data:    "resolve:" + tk.ID,
				Message: &notify.Message{MessageID: 3, Chat: notify.Chat{ID: 42}},
			},
		}}
		b, _ := json.Marshal(updates)
		w.Write([]byte(`{"ok":true,"result":` + string(b) + `}`))
	}))
	defer srv.Close()

	bot := notify.NewTelegram("token", 42)
	bot.BaseURL = srv.URL
	run(ctx, bot, store)

	got, err := store.GetTicket(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.TicketResolved, got.Status)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}
