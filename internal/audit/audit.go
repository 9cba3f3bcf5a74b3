// Package audit records administrative actions for later review.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Event is one recorded action.
type Event struct {
	ActorID    string
	Action     string // e.g. "user.create", "course.delete"
	ResourceID string
	Data       map[string]any
	CreatedAt  time.Time
}

// Logger defines audit logging behavior.
type Logger interface {
	Log(event Event) error
}

// NopLogger ignores all events.
type NopLogger struct{}

func (NopLogger) Log(Event) error {
	return nil
}

// MemoryLogger stores events in memory for tests.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		events: []Event{},
	}
}

func (l *MemoryLogger) Log(event Event) error {
	if event.Action == "" {
		return fmt.Errorf("action is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresLogger inserts events into the audit_events table.
type PostgresLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresLogger(pool *pgxpool.Pool) *PostgresLogger {
	return &PostgresLogger{pool: pool}
}

// EnsureSchema creates the audit table if it does not exist.
func (l *PostgresLogger) EnsureSchema(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			resource_id TEXT,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (l *PostgresLogger) Log(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("audit logger pool is nil")
	}
	if event.Action == "" {
		return fmt.Errorf("action is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO audit_events (actor_id, action, resource_id, data, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)`,
		event.ActorID,
		event.Action,
		nullIfEmpty(event.ResourceID),
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	slog.Debug("audit event logged",
		"action", event.Action,
		"actor_id", event.ActorID,
		"resource_id", event.ResourceID,
	)
	return nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
