// Package auth reads and issues the signed session tokens that identify a
// viewer. Logging in happens elsewhere; this package only trusts tokens signed
// with the configured secret.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature or claim checks.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("session secret is not configured")
)

// Viewer is the identity attached to a request.
type Viewer struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// Authenticated reports whether the viewer carries a username.
func (v Viewer) Authenticated() bool {
	return v.Username != ""
}

type claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager returns a manager for the given secret.
func NewTokenManager(secret string) (*TokenManager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenManager{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for the viewer that expires after ttl.
func (m *TokenManager) Issue(v Viewer, ttl time.Duration) (string, error) {
	if strings.TrimSpace(v.Username) == "" {
		return "", fmt.Errorf("issue token: username is required")
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Admin: v.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   v.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the viewer it names.
func (m *TokenManager) Parse(raw string) (Viewer, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Viewer{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return Viewer{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Viewer{Username: c.Subject, Admin: c.Admin}, nil
}

type viewerKey struct{}

// WithViewer stores the viewer on the context.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// FromContext returns the viewer for the request, or an anonymous viewer.
func FromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerKey{}).(Viewer)
	return v
}
