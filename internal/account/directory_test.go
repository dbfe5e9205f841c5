package account_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/serroba/shortify/internal/account"
	"github.com/serroba/shortify/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// brokenRepo fails every lookup.
type brokenRepo struct {
	account.Repository
}

func (brokenRepo) GetByUsername(context.Context, string) (*account.Account, error) {
	return nil, errors.New("db down")
}

func newDirectory(t *testing.T) *account.Directory {
	t.Helper()

	return account.NewDirectory(
		store.NewMemoryStore().AccountStore(),
		account.NewBcryptVerifier(bcrypt.MinCost),
		zap.NewNop(),
	)
}

func TestDirectory_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hashed credential", func(t *testing.T) {
		dir := newDirectory(t)

		acct, err := dir.Register(ctx, account.Registration{Username: " alice ", Password: "pw", DisplayName: "Alice"})

		require.NoError(t, err)
		assert.Equal(t, "alice", acct.Username)
		assert.NotZero(t, acct.ID)
		assert.NotEqual(t, "pw", acct.PasswordHash)
		assert.False(t, acct.CreatedAt.IsZero())
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		dir := newDirectory(t)
		_, err := dir.Register(ctx, account.Registration{Username: "alice", Password: "pw", DisplayName: "Alice"})
		require.NoError(t, err)

		_, err = dir.Register(ctx, account.Registration{Username: "alice", Password: "pw2", DisplayName: "Other"})

		assert.ErrorIs(t, err, account.ErrDuplicateAccount)
	})

	t.Run("duplicate display name is rejected", func(t *testing.T) {
		dir := newDirectory(t)
		_, err := dir.Register(ctx, account.Registration{Username: "alice", Password: "pw", DisplayName: "Alice"})
		require.NoError(t, err)

		_, err = dir.Register(ctx, account.Registration{Username: "bob", Password: "pw", DisplayName: "Alice"})

		assert.ErrorIs(t, err, account.ErrDuplicateAccount)
	})

	t.Run("multibyte password over 72 bytes is invalid", func(t *testing.T) {
		dir := newDirectory(t)

		_, err := dir.Register(ctx, account.Registration{
			Username: "alice", Password: strings.Repeat("é", 72), DisplayName: "Alice",
		})

		assert.ErrorIs(t, err, account.ErrPasswordTooLong)
	})

	t.Run("missing fields are invalid", func(t *testing.T) {
		dir := newDirectory(t)

		for _, reg := range []account.Registration{
			{Password: "pw", DisplayName: "A"},
			{Username: "a", DisplayName: "A"},
			{Username: "a", Password: "pw", DisplayName: " "},
		} {
			_, err := dir.Register(ctx, reg)
			assert.ErrorIs(t, err, account.ErrInvalidAccount)
		}
	})
}

func TestDirectory_Authenticate(t *testing.T) {
	ctx := context.Background()
	dir := newDirectory(t)

	registered, err := dir.Register(ctx, account.Registration{Username: "alice", Password: "pw", DisplayName: "Alice"})
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		acct, err := dir.Authenticate(ctx, "alice", "pw")

		require.NoError(t, err)
		assert.Equal(t, registered.ID, acct.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := dir.Authenticate(ctx, "alice", "nope")

		assert.ErrorIs(t, err, account.ErrAuthenticationFailed)
	})

	t.Run("unknown user looks like a wrong password", func(t *testing.T) {
		_, err := dir.Authenticate(ctx, "mallory", "pw")

		assert.ErrorIs(t, err, account.ErrAuthenticationFailed)
	})

	t.Run("storage fault is not an authentication failure", func(t *testing.T) {
		broken := account.NewDirectory(brokenRepo{}, account.NewBcryptVerifier(bcrypt.MinCost), zap.NewNop())

		_, err := broken.Authenticate(ctx, "alice", "pw")

		require.Error(t, err)
		assert.NotErrorIs(t, err, account.ErrAuthenticationFailed)
	})
}

func TestDirectory_Updates(t *testing.T) {
	ctx := context.Background()
	dir := newDirectory(t)

	alice, err := dir.Register(ctx, account.Registration{Username: "alice", Password: "pw", DisplayName: "Alice"})
	require.NoError(t, err)
	_, err = dir.Register(ctx, account.Registration{Username: "bob", Password: "pw", DisplayName: "Bob"})
	require.NoError(t, err)

	t.Run("rename", func(t *testing.T) {
		acct, err := dir.UpdateDisplayName(ctx, alice.ID, "Alicia")

		require.NoError(t, err)
		assert.Equal(t, "Alicia", acct.DisplayName)
	})

	t.Run("rename to a taken display name", func(t *testing.T) {
		_, err := dir.UpdateDisplayName(ctx, alice.ID, "Bob")

		assert.ErrorIs(t, err, account.ErrDuplicateAccount)
	})

	t.Run("change password requires the current one", func(t *testing.T) {
		assert.ErrorIs(t, dir.ChangePassword(ctx, alice.ID, "wrong", "new"), account.ErrAuthenticationFailed)

		require.NoError(t, dir.ChangePassword(ctx, alice.ID, "pw", "new"))

		_, err := dir.Authenticate(ctx, "alice", "new")
		assert.NoError(t, err)

		_, err = dir.Authenticate(ctx, "alice", "pw")
		assert.ErrorIs(t, err, account.ErrAuthenticationFailed)
	})

	t.Run("overlong new password is invalid", func(t *testing.T) {
		err := dir.ChangePassword(ctx, alice.ID, "new", strings.Repeat("é", 72))

		assert.ErrorIs(t, err, account.ErrInvalidAccount)

		_, err = dir.Authenticate(ctx, "alice", "new")
		assert.NoError(t, err)
	})

	t.Run("count", func(t *testing.T) {
		n, err := dir.Count(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
