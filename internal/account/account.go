// Package account holds registered accounts and verifies their credentials.
package account

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateAccount is returned when the username or display name is already taken.
	ErrDuplicateAccount     = errors.New("account already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Account is a registered user. PasswordHash is a one-way credential hash, never plaintext.
type Account struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository defines storage operations for accounts.
// Create assigns ID and returns ErrDuplicateAccount on a uniqueness collision.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	Count(ctx context.Context) (int64, error)
}
