// Package events defines the audit events emitted by the service.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicLinkCreated       = "link.created"
	TopicAccountRegistered = "account.registered"
)

// LinkCreatedEvent is emitted when a long URL is shortened for the first time.
type LinkCreatedEvent struct {
	ID        string    `json:"id"`
	LinkID    int64     `json:"linkId"`
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	RequestID string    `json:"requestId,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// AccountRegisteredEvent is emitted when an account is created. It never carries credentials.
type AccountRegisteredEvent struct {
	ID           string    `json:"id"`
	AccountID    int64     `json:"accountId"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registeredAt"`
	RequestID    string    `json:"requestId,omitempty"`
	ClientIP     string    `json:"clientIp,omitempty"`
}

func NewLinkCreated() *LinkCreatedEvent {
	return &LinkCreatedEvent{ID: uuid.NewString()}
}

func NewAccountRegistered() *AccountRegisteredEvent {
	return &AccountRegisteredEvent{ID: uuid.NewString()}
}

func (e *LinkCreatedEvent) CorrelationID() string       { return e.RequestID }
func (e *AccountRegisteredEvent) CorrelationID() string { return e.RequestID }
