// Package session verifies EdDSA-signed end-user session tokens.
package session

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
	Scope string   `json:"scope,omitempty"`
}

type Authenticator struct {
	key    ed25519.PublicKey
	leeway time.Duration
	now    func() time.Time
}

type Option func(*Authenticator)

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

func WithLeeway(leeway time.Duration) Option {
	return func(a *Authenticator) {
		a.leeway = leeway
	}
}

func NewAuthenticator(publicKeyBase64 string, opts ...Option) (*Authenticator, error) {
	raw := strings.TrimSpace(publicKeyBase64)
	if raw == "" {
		return nil, errors.New("SESSION_PUBLIC_KEY_BASE64 is required")
	}
	keyBytes, err := decodeBase64(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("session public key must be %d bytes", ed25519.PublicKeySize)
	}
	a := &Authenticator{key: ed25519.PublicKey(keyBytes), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Authenticate reads the bearer token from the Authorization header.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (domain.Principal, error) {
	return a.AuthenticateToken(ctx, extractBearerToken(r.Header.Get("Authorization")))
}

func (a *Authenticator) AuthenticateToken(_ context.Context, token string) (domain.Principal, error) {
	if a == nil {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
		jwt.WithLeeway(a.leeway),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return domain.Principal{
		Subject: claims.Subject,
		Roles:   claims.Roles,
		Scopes:  strings.Fields(claims.Scope),
	}, nil
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

func decodeBase64(value string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return base64.RawURLEncoding.DecodeString(value)
}
