package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidAccount is returned when registration data is missing a required field.
var ErrInvalidAccount = errors.New("invalid account data")

// Registration is the data needed to create an account.
type Registration struct {
	Username    string
	Password    string
	DisplayName string
}

// Directory manages accounts and checks credentials.
type Directory struct {
	repo   Repository
	creds  CredentialVerifier
	logger *zap.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewDirectory creates a new account directory.
func NewDirectory(repo Repository, creds CredentialVerifier, logger *zap.Logger) *Directory {
	return &Directory{
		repo:   repo,
		creds:  creds,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an account, hashing the password before it reaches storage.
func (d *Directory) Register(ctx context.Context, reg Registration) (*Account, error) {
	username := strings.TrimSpace(reg.Username)
	displayName := strings.TrimSpace(reg.DisplayName)

	if username == "" || displayName == "" || reg.Password == "" {
		return nil, ErrInvalidAccount
	}

	if _, err := d.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := d.creds.Hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := &Account{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    d.now().UTC(),
	}

	// A concurrent registration can still win between lookup and insert.
	if err := d.repo.Create(ctx, acct); err != nil {
		return nil, err
	}

	d.logger.Info("account registered",
		zap.Int64("accountId", acct.ID),
		zap.String("username", acct.Username),
	)

	return acct, nil
}

// Authenticate returns the account when password matches, or ErrAuthenticationFailed.
// Unknown usernames cost the same hash comparison as known ones.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	acct, err := d.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = d.creds.Verify(d.dummy(), password)

			return nil, ErrAuthenticationFailed
		}

		return nil, fmt.Errorf("lookup username: %w", err)
	}

	if err := d.creds.Verify(acct.PasswordHash, password); err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			return nil, ErrAuthenticationFailed
		}

		return nil, fmt.Errorf("verify credential: %w", err)
	}

	return acct, nil
}

func (d *Directory) Get(ctx context.Context, id int64) (*Account, error) {
	return d.repo.GetByID(ctx, id)
}

func (d *Directory) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return d.repo.GetByUsername(ctx, username)
}

// UpdateDisplayName renames an account. Display names are unique.
func (d *Directory) UpdateDisplayName(ctx context.Context, id int64, displayName string) (*Account, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrInvalidAccount
	}

	acct, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	acct.DisplayName = displayName

	if err := d.repo.Update(ctx, acct); err != nil {
		return nil, err
	}

	return acct, nil
}

// ChangePassword replaces the credential after checking the current one.
func (d *Directory) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if next == "" {
		return ErrInvalidAccount
	}

	acct, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := d.creds.Verify(acct.PasswordHash, current); err != nil {
		return ErrAuthenticationFailed
	}

	hash, err := d.creds.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	acct.PasswordHash = hash

	return d.repo.Update(ctx, acct)
}

// Count returns the number of registered accounts.
func (d *Directory) Count(ctx context.Context) (int64, error) {
	return d.repo.Count(ctx)
}

func (d *Directory) dummy() string {
	d.dummyOnce.Do(func() {
		hash, err := d.creds.Hash("timing-equalizer")
		if err != nil {
			d.logger.Warn("failed to prepare dummy credential", zap.Error(err))

			return
		}

		d.dummyHash = hash
	})

	return d.dummyHash
}
