// Package seed prepares the data the service needs before it accepts traffic.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/shortify/internal/account"
	"go.uber.org/zap"
)

// Accounts is the part of the account directory seeding needs.
type Accounts interface {
	Count(ctx context.Context) (int64, error)
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
	Register(ctx context.Context, reg account.Registration) (*account.Account, error)
}

// PublicAccount describes the system account that owns anonymously shortened links.
type PublicAccount struct {
	Username    string
	DisplayName string
	// Password is generated with NewPassword when empty. It is never logged.
	Password    string
	NewPassword func() string
}

// EnsurePublicAccount creates the public account on an empty account store.
// It reports whether an account was created. Stores that already hold accounts are left alone.
func EnsurePublicAccount(ctx context.Context, accounts Accounts, cfg PublicAccount, logger *zap.Logger) (bool, error) {
	n, err := accounts.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}

	if n > 0 {
		if _, err := accounts.GetByUsername(ctx, cfg.Username); errors.Is(err, account.ErrNotFound) {
			logger.Warn("public account is missing; anonymous shortening is unavailable",
				zap.String("username", cfg.Username),
			)
		}

		return false, nil
	}

	password := cfg.Password
	if password == "" && cfg.NewPassword != nil {
		password = cfg.NewPassword()
	}

	acct, err := accounts.Register(ctx, account.Registration{
		Username:    cfg.Username,
		Password:    password,
		DisplayName: cfg.DisplayName,
	})
	if err != nil {
		// Another instance seeded first.
		if errors.Is(err, account.ErrDuplicateAccount) {
			return false, nil
		}

		return false, fmt.Errorf("create public account: %w", err)
	}

	logger.Info("public account created",
		zap.Int64("accountId", acct.ID),
		zap.String("username", acct.Username),
	)

	return true, nil
}
