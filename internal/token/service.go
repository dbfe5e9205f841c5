// Package token issues and validates signed bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 30 * time.Minute

// MinSecretLength is the HS256 key size in bytes.
const MinSecretLength = 32

var (
	// ErrTokenMalformed is returned when a token's signature or structure cannot be verified.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrWeakSecret is returned when the signing secret is shorter than MinSecretLength.
	ErrWeakSecret = errors.New("signing secret too short")
)

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service signs tokens with a shared HMAC secret. It holds no mutable state.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewService creates a token service. The secret is copied and never exposed.
func NewService(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	s := &Service{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
		// Expiry is checked by Validate so that extraction works on expired tokens.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TTL returns the lifetime given to issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject, valid from now until now+TTL.
func (s *Service) Issue(subject string) (string, error) {
	now := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate reports whether token carries a valid signature, has not expired and
// belongs to expectedSubject. It never returns an error.
func (s *Service) Validate(token, expectedSubject string) bool {
	claims, err := s.verify(token)
	if err != nil {
		return false
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(s.now()) {
		return false
	}

	return claims.Subject == expectedSubject
}

// ExtractSubject returns the verified subject claim.
func (s *Service) ExtractSubject(token string) (string, error) {
	claims, err := s.verify(token)
	if err != nil {
		return "", err
	}

	return claims.Subject, nil
}

// ExtractExpiration returns the verified expiration claim.
func (s *Service) ExtractExpiration(token string) (time.Time, error) {
	claims, err := s.verify(token)
	if err != nil {
		return time.Time{}, err
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", ErrTokenMalformed)
	}

	return claims.ExpiresAt.Time, nil
}

func (s *Service) verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
