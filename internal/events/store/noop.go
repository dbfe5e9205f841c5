package store

import (
	"context"

	"github.com/serroba/shortify/internal/events"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of events.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op audit store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkCreated(_ context.Context, event *events.LinkCreatedEvent) error {
	n.logger.Info("link created event received",
		zap.String("eventId", event.ID),
		zap.String("code", event.Code),
		zap.Int64("ownerId", event.OwnerID),
		zap.String("requestId", event.RequestID),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveAccountRegistered(_ context.Context, event *events.AccountRegisteredEvent) error {
	n.logger.Info("account registered event received",
		zap.String("eventId", event.ID),
		zap.Int64("accountId", event.AccountID),
		zap.String("requestId", event.RequestID),
		zap.Time("registeredAt", event.RegisteredAt),
	)

	return nil
}

var _ events.Store = (*Noop)(nil)
