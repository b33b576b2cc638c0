package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS support_tickets (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sizing_results (
		id UUID PRIMARY KEY,
		method TEXT NOT NULL,
		installation_type TEXT,
		devices JSONB,
		ats_enabled BOOLEAN DEFAULT false,
		running_load NUMERIC,
		peak_load NUMERIC,
		recommended_generator INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS support_tickets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sizing_results (
		id TEXT PRIMARY KEY,
		method TEXT NOT NULL,
		installation_type TEXT,
		devices TEXT,
		ats_enabled BOOLEAN DEFAULT 0,
		running_load REAL,
		peak_load REAL,
		recommended_generator INTEGER,
		created_at TIMESTAMP NOT NULL
	)`,
}

// Open returns the store for driver. DriverNone, or an empty driver, gives
// the inert Noop store and a nil *sql.DB.
func Open(ctx context.Context, driver, dsn string) (Repository, *sql.DB, error) {
	switch driver {
	case "", DriverNone:
		return Noop{}, nil, nil
	case DriverPostgres:
		dsn = withSSLMode(dsn)
	case DriverSQLite:
		dsn = withTimeFormat(dsn)
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	r := NewSQLRepository(db, driver)
	if err := r.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return r, db, nil
}

func withSSLMode(dsn string) string {
	if dsn == "" {
		dsn = "user=postgres dbname=postgres password=password sslmode=disable"
	}
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&sslmode=require"
		}
		return dsn + "?sslmode=require"
	}
	return dsn + " sslmode=require"
}

// withTimeFormat makes the sqlite driver write times in a layout it parses
// back into time.Time.
func withTimeFormat(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_time_format=sqlite"
	}
	return dsn + "?_time_format=sqlite"
}

type SQLRepository struct {
	db      *sql.DB
	dialect string
}

func NewSQLRepository(db *sql.DB, dialect string) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if r.dialect == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind turns ? placeholders into $n for postgres.
func (r *SQLRepository) rebind(query string) string {
	if r.dialect != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SQLRepository) CreateTicket(ctx context.Context, t Ticket) (Ticket, error) {
	t = stampTicket(t)
	query := r.rebind("INSERT INTO support_tickets (id, name, email, message, status, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Email, t.Message, t.Status, t.CreatedAt); err != nil {
		return Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) GetTicket(ctx context.Context, id string) (Ticket, error) {
	var t Ticket
	query := r.rebind("SELECT id, name, email, message, status, created_at FROM support_tickets WHERE id = ?")
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Email, &t.Message, &t.Status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Ticket{}, ErrNotFound
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) ListTickets(ctx context.Context, limit int) ([]Ticket, error) {
	query := r.rebind("SELECT id, name, email, message, status, created_at FROM support_tickets ORDER BY created_at DESC LIMIT ?")
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []Ticket{}
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Message, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *SQLRepository) UpdateTicketStatus(ctx context.Context, id, status string) error {
	query := r.rebind("UPDATE support_tickets SET status = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) SaveSizing(ctx context.Context, rec SizingRecord) (SizingRecord, error) {
	rec = stampSizing(rec)
	query := r.rebind(`INSERT INTO sizing_results
		(id, method, installation_type, devices, ats_enabled, running_load, peak_load, recommended_generator, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.Method, rec.InstallationType, string(rec.Devices),
		rec.ATSEnabled, rec.RunningLoad, rec.PeakLoad, rec.RecommendedKW, rec.CreatedAt)
	if err != nil {
		return SizingRecord{}, fmt.Errorf("insert sizing: %w", err)
	}
	return rec, nil
}

func (r *SQLRepository) ListSizings(ctx context.Context, limit int) ([]SizingRecord, error) {
	query := r.rebind(`SELECT id, method, installation_type, devices, ats_enabled, running_load, peak_load, recommended_generator, created_at
		FROM sizing_results ORDER BY created_at DESC LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sizings: %w", err)
	}
	defer rows.Close()

	records := []SizingRecord{}
	for rows.Next() {
		var rec SizingRecord
		var devices []byte
		err := rows.Scan(&rec.ID, &rec.Method, &rec.InstallationType, &devices, &rec.ATSEnabled,
			&rec.RunningLoad, &rec.PeakLoad, &rec.RecommendedKW, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan sizing: %w", err)
		}
		rec.Devices = json.RawMessage(devices)
		records = append(records, rec)
	}
	return records, rows.Err()
}
