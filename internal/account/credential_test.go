package account_test

import (
	"strings"
	"testing"

	"github.com/serroba/shortify/internal/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	v := account.NewBcryptVerifier(bcrypt.MinCost)

	t.Run("hash is not the plaintext and verifies", func(t *testing.T) {
		hash, err := v.Hash("s3cret!")
		require.NoError(t, err)

		assert.NotEqual(t, "s3cret!", hash)
		assert.NoError(t, v.Verify(hash, "s3cret!"))
	})

	t.Run("wrong password fails authentication", func(t *testing.T) {
		hash, err := v.Hash("s3cret!")
		require.NoError(t, err)

		assert.ErrorIs(t, v.Verify(hash, "wrong"), account.ErrAuthenticationFailed)
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		a, err := v.Hash("pw")
		require.NoError(t, err)
		b, err := v.Hash("pw")
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("multibyte password over 72 bytes is invalid", func(t *testing.T) {
		long := strings.Repeat("é", 72)

		_, err := v.Hash(long)

		assert.ErrorIs(t, err, account.ErrPasswordTooLong)
		assert.ErrorIs(t, err, account.ErrInvalidAccount)
	})

	t.Run("password of exactly 72 bytes hashes", func(t *testing.T) {
		pw := strings.Repeat("é", 36)

		hash, err := v.Hash(pw)
		require.NoError(t, err)
		assert.NoError(t, v.Verify(hash, pw))
		assert.ErrorIs(t, v.Verify(hash, pw+"x"), account.ErrAuthenticationFailed)
	})

	t.Run("garbage hash is an error other than mismatch", func(t *testing.T) {
		err := v.Verify("not-a-hash", "pw")

		require.Error(t, err)
		assert.NotErrorIs(t, err, account.ErrAuthenticationFailed)
	})

	t.Run("out of range cost uses the default", func(t *testing.T) {
		hash, err := account.NewBcryptVerifier(99).Hash("pw")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, account.DefaultCost, cost)
	})
}
