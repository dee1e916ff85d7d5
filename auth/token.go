// Package auth issues and checks the credentials used by the HTTP API:
// argon2id password hashes and HS256-signed JWTs.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	claimUsername = "username"
	claimIsAdmin  = "isAdmin"
)

// ErrInvalidToken is returned by Verify for any token that fails parsing,
// signature or time validation, or lacks the username claim.
var ErrInvalidToken = errors.New("jobly/auth: invalid token")

// Claims is what the API trusts about the caller.
type Claims struct {
	Username string
	IsAdmin  bool
	ID       string
	IssuedAt time.Time
}

// TokenService signs and verifies tokens with a shared secret.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenService returns a TokenService. A zero ttl issues tokens without
// an exp claim.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jobly/auth: empty signing secret")
	}
	return &TokenService{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Create signs a token for username.
func (s *TokenService) Create(username string, isAdmin bool) (string, error) {
	now := s.now()
	b := jwt.NewBuilder().
		IssuedAt(now).
		JwtID(uuid.NewString()).
		Claim(claimUsername, username).
		Claim(claimIsAdmin, isAdmin)
	if s.ttl > 0 {
		b = b.Expiration(now.Add(s.ttl))
	}
	tok, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("jobly/auth: build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", fmt.Errorf("jobly/auth: sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks the signature and, when present, the expiry of raw.
func (s *TokenService) Verify(raw string) (Claims, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var c Claims
	if err := tok.Get(claimUsername, &c.Username); err != nil || c.Username == "" {
		return Claims{}, fmt.Errorf("%w: missing %s claim", ErrInvalidToken, claimUsername)
	}
	// isAdmin is optional; absent means false.
	_ = tok.Get(claimIsAdmin, &c.IsAdmin)
	c.ID, _ = tok.JwtID()
	c.IssuedAt, _ = tok.IssuedAt()
	return c, nil
}
