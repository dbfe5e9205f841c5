package events

import "context"

// Store defines the interface for persisting audit events.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveAccountRegistered(ctx context.Context, event *AccountRegisteredEvent) error
}
