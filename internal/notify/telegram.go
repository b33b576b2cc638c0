package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"MyGens/internal/repo"
)

type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Telegram posts new support tickets to the admin chat and lets the admin
// close them from inline buttons.
type Telegram struct {
	Token      string
	ChatID     int64
	BaseURL    string
	HTTPClient *http.Client
}

func NewTelegram(token string, chatID int64) *Telegram {
	return &Telegram{
		Token:      token,
		ChatID:     chatID,
		BaseURL:    "https://api.telegram.org",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *Telegram) TicketCreated(ctx context.Context, tk repo.Ticket) error {
	text := fmt.Sprintf("New support ticket #%s\nFrom: %s <%s>\n\n%s", shortID(tk.ID), tk.Name, tk.Email, tk.Message)
	payload := map[string]any{
		"chat_id": t.ChatID,
		"text":    text,
		"reply_markup": map[string]any{
			"inline_keyboard": [][]inlineButton{{
				{Text: "Resolve", CallbackData: "resolve:" + tk.ID},
				{Text: "Spam", CallbackData: "spam:" + tk.ID},
			}},
		},
	}
	return t.call(ctx, "sendMessage", payload, nil)
}

func (t *Telegram) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	var updates []Update
	err := t.call(ctx, "getUpdates", map[string]any{"timeout": 20, "offset": offset}, &updates)
	return updates, err
}

func (t *Telegram) AnswerCallback(ctx context.Context, id, text string) error {
	return t.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": id, "text": text}, nil)
}

func (t *Telegram) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	return t.call(ctx, "editMessageText", payload, nil)
}

// HandleCallback applies an inline button press to the ticket it names.
// Presses from any chat other than the admin chat are refused.
func (t *Telegram) HandleCallback(ctx context.Context, store repo.Repository, cb *CallbackQuery) error {
	if cb.Message == nil || cb.Message.Chat.ID != t.ChatID {
		return t.AnswerCallback(ctx, cb.ID, "Not allowed")
	}
	action, id, ok := strings.Cut(cb.Data, ":")
	if !ok || id == "" {
		return t.AnswerCallback(ctx, cb.ID, "Bad data")
	}

	var status string
	switch action {
	case "resolve":
		status = repo.TicketResolved
	case "spam":
		status = repo.TicketSpam
	default:
		return t.AnswerCallback(ctx, cb.ID, "Unknown action")
	}

	err := store.UpdateTicketStatus(ctx, id, status)
	if errors.Is(err, repo.ErrNotFound) {
		return t.AnswerCallback(ctx, cb.ID, "Ticket not found")
	}
	if err != nil {
		return fmt.Errorf("update ticket %s: %w", id, err)
	}

	if err := t.AnswerCallback(ctx, cb.ID, "Marked "+status); err != nil {
		return err
	}
	return t.EditMessage(ctx, cb.Message.Chat.ID, cb.Message.MessageID, fmt.Sprintf("Ticket #%s marked %s", shortID(id), status))
}

func (t *Telegram) call(ctx context.Context, method string, payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/%s", t.BaseURL, t.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer res.Body.Close()

	var resp apiResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return fmt.Errorf("telegram %s: decode: %w", method, err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram %s: %s", method, resp.Description)
	}
	if out != nil {
		return json.Unmarshal(resp.Result, out)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
