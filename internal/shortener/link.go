// Package shortener turns long URLs into short codes and resolves them back.
package shortener

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/shortify/internal/codec"
)

// MaxURLLength bounds the stored long URL.
const MaxURLLength = 2048

var (
	ErrNotFound = errors.New("url not found")
	// ErrInvalidCode is returned for codes that contain symbols outside the codec alphabet.
	ErrInvalidCode = codec.ErrInvalidCode
	// ErrDuplicateURL is returned by Repository.Create when the long URL is already stored.
	ErrDuplicateURL = errors.New("url already shortened")
	ErrEmptyURL     = errors.New("url is empty")
	ErrURLTooLong   = errors.New("url too long")
)

// Code represents a short URL code.
type Code string

// ShortLink is a stored long URL. Code is empty until it has been assigned.
type ShortLink struct {
	ID        int64
	LongURL   string
	Code      Code
	OwnerID   int64
	CreatedAt time.Time
}

// EffectiveCode returns the assigned code, deriving it from ID when not yet written.
func (l *ShortLink) EffectiveCode() Code {
	if l.Code != "" {
		return l.Code
	}

	return Code(codec.Encode(uint64(l.ID)))
}

// Repository defines storage operations for short links.
type Repository interface {
	// Create inserts link and sets its ID. It returns ErrDuplicateURL when the long URL exists.
	Create(ctx context.Context, link *ShortLink) error
	AssignCode(ctx context.Context, id int64, code Code) error
	GetByID(ctx context.Context, id int64) (*ShortLink, error)
	GetByLongURL(ctx context.Context, longURL string) (*ShortLink, error)
	ExistsByLongURL(ctx context.Context, longURL string) (bool, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*ShortLink, error)
	Count(ctx context.Context) (int64, error)
}

// Cache is a keyed store of resolved links. Implementations state their own eviction policy.
type Cache interface {
	Get(ctx context.Context, code Code) (*ShortLink, bool, error)
	Put(ctx context.Context, code Code, link *ShortLink) error
}
