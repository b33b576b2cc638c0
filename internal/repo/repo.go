package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrDisabled = errors.New("persistence disabled")
)

const (
	TicketOpen     = "open"
	TicketResolved = "resolved"
	TicketSpam     = "spam"
)

type Ticket struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SizingRecord is a saved calculator run. Devices holds the JSON encoded
// appliance list or industrial input.
type SizingRecord struct {
	ID               string          `json:"id"`
	Method           string          `json:"method"`
	InstallationType string          `json:"installation_type"`
	Devices          json.RawMessage `json:"devices"`
	ATSEnabled       bool            `json:"ats_enabled"`
	RunningLoad      float64         `json:"running_load"`
	PeakLoad         float64         `json:"peak_load"`
	RecommendedKW    int             `json:"recommended_kw"`
	CreatedAt        time.Time       `json:"created_at"`
}

type Repository interface {
	CreateTicket(ctx context.Context, t Ticket) (Ticket, error)
	GetTicket(ctx context.Context, id string) (Ticket, error)
	ListTickets(ctx context.Context, limit int) ([]Ticket, error)
	UpdateTicketStatus(ctx context.Context, id, status string) error
	SaveSizing(ctx context.Context, rec SizingRecord) (SizingRecord, error)
	ListSizings(ctx context.Context, limit int) ([]SizingRecord, error)
}

// ValidStatus reports whether s is a ticket status the store accepts.
func ValidStatus(s string) bool {
	switch s {
	case TicketOpen, TicketResolved, TicketSpam:
		return true
	}
	return false
}

// stampTicket fills the generated fields shared by both stores.
func stampTicket(t Ticket) Ticket {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	if t.Status == "" {
		t.Status = TicketOpen
	}
	return t
}

func stampSizing(rec SizingRecord) SizingRecord {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	if len(rec.Devices) == 0 {
		rec.Devices = []byte("null")
	}
	return rec
}

// Noop accepts writes and forgets them. It is the default store while no
// database is configured.
type Noop struct{}

func (Noop) CreateTicket(_ context.Context, t Ticket) (Ticket, error) {
	return stampTicket(t), nil
}

func (Noop) GetTicket(context.Context, string) (Ticket, error) {
	return Ticket{}, ErrDisabled
}

func (Noop) ListTickets(context.Context, int) ([]Ticket, error) {
	return []Ticket{}, nil
}

func (Noop) UpdateTicketStatus(context.Context, string, string) error {
	return ErrDisabled
}

func (Noop) SaveSizing(_ context.Context, rec SizingRecord) (SizingRecord, error) {
	return stampSizing(rec), nil
}

func (Noop) ListSizings(context.Context, int) ([]SizingRecord, error) {
	return []SizingRecord{}, nil
}
