package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails signature or claim validation.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims carries the identity fields embedded in issued tokens.
type Claims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed JWTs for API callers.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenManagerOption customises TokenManager behaviour.
type TokenManagerOption func(*TokenManager)

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) TokenManagerOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewTokenManager constructs a TokenManager with the given signing secret and token lifetime.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenManagerOption) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	manager := &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(manager)
		}
	}
	return manager, nil
}

// Issue signs a token for the provided identity.
func (m *TokenManager) Issue(identity Identity) (string, error) {
	if strings.TrimSpace(identity.AccountID) == "" {
		return "", errors.New("auth: account id is required")
	}

	now := m.now()
	claims := Claims{
		Email: identity.Email,
		Roles: append([]string(nil), identity.Roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the token signature and expiry and returns the embedded identity.
func (m *TokenManager) Verify(raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	token, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		AccountID: claims.Subject,
		Email:     claims.Email,
		Roles:     append([]string(nil), claims.Roles...),
	}, nil
}
