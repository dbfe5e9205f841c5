package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortify/internal/events"
)

// Postgres writes audit events into the audit_events table.
// Redelivered events are ignored by primary key.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveLinkCreated(ctx context.Context, event *events.LinkCreatedEvent) error {
	return p.insert(ctx, event.ID, events.TopicLinkCreated, event.LinkID, event.RequestID, event.CreatedAt, event)
}

func (p *Postgres) SaveAccountRegistered(ctx context.Context, event *events.AccountRegisteredEvent) error {
	return p.insert(ctx, event.ID, events.TopicAccountRegistered, event.AccountID, event.RequestID,
		event.RegisteredAt, event)
}

func (p *Postgres) insert(
	ctx context.Context, id, kind string, subjectID int64, requestID string, occurredAt time.Time, payload any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_events (id, kind, subject_id, request_id, payload, occurred_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = p.pool.Exec(ctx, query, id, kind, subjectID, requestID, body, occurredAt)

	return err
}

var _ events.Store = (*Postgres)(nil)
