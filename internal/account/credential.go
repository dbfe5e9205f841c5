package account

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is an ErrInvalidAccount for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = fmt.Errorf("%w: password longer than %d bytes", ErrInvalidAccount, MaxPasswordBytes)

// CredentialVerifier hashes passwords one way and checks them against stored hashes.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// BcryptVerifier implements CredentialVerifier with bcrypt.
type BcryptVerifier struct {
	cost int
}

// NewBcryptVerifier creates a verifier. Costs outside bcrypt's range fall back to DefaultCost.
func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return &BcryptVerifier{cost: cost}
}

func (v *BcryptVerifier) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}

		return "", err
	}

	return string(hash), nil
}

// Verify returns ErrAuthenticationFailed when password does not match hash.
// No stored hash was made from a password over MaxPasswordBytes.
func (v *BcryptVerifier) Verify(hash, password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrAuthenticationFailed
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrAuthenticationFailed
	}

	return err
}
