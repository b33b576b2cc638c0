package support

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"MyGens/internal/repo"
)

var ErrMissingFields = errors.New("name, email and message are required")

type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Normalize trims every field and reports a single error when any is blank.
func (r Request) Normalize() (Request, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Message = strings.TrimSpace(r.Message)
	if r.Name == "" || r.Email == "" || r.Message == "" {
		return r, ErrMissingFields
	}
	return r, nil
}

type Notifier interface {
	TicketCreated(ctx context.Context, t repo.Ticket) error
}

type Service struct {
	Repo     repo.Repository
	Notifier Notifier
}

// Submit validates and files a ticket. A failed notification is logged and
// does not fail the submission.
func (s *Service) Submit(ctx context.Context, req Request) (repo.Ticket, error) {
	req, err := req.Normalize()
	if err != nil {
		return repo.Ticket{}, err
	}

	t, err := s.Repo.CreateTicket(ctx, repo.Ticket{Name: req.Name, Email: req.Email, Message: req.Message})
	if err != nil {
		return repo.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	slog.Info("support ticket received", "id", t.ID, "email", t.Email)

	if s.Notifier != nil {
		if err := s.Notifier.TicketCreated(ctx, t); err != nil {
			slog.Warn("ticket notification failed", "id", t.ID, "error", err)
		}
	}
	return t, nil
}
