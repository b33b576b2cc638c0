package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"MyGens/internal/repo"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Handler serves the back-office views over support tickets and saved
// sizing runs. Routes are expected behind auth.Admin.Middleware.
type Handler struct {
	Repo repo.Repository
}

type UpdateTicketRequest struct {
	Status string `json:"status"`
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.Repo.ListTickets(r.Context(), limitParam(r))
	if err != nil {
		slog.Error("list tickets", "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tickets)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	t, err := h.Repo.GetTicket(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	var req UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if !repo.ValidStatus(req.Status) {
		http.Error(w, "Unknown status", http.StatusBadRequest)
		return
	}
	id, err := ticketID(r)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if err := h.Repo.UpdateTicketStatus(r.Context(), id, req.Status); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSizings(w http.ResponseWriter, r *http.Request) {
	records, err := h.Repo.ListSizings(r.Context(), limitParam(r))
	if err != nil {
		slog.Error("list sizings", "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "Ticket not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrDisabled):
		http.Error(w, "Persistence disabled", http.StatusServiceUnavailable)
	default:
		slog.Error("ticket store", "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
	}
}

// ticketID reads the {id} path var. Ticket ids are UUIDs, so anything else
// cannot exist.
func ticketID(r *http.Request) (string, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return "", repo.ErrNotFound
	}
	return id.String(), nil
}

func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
