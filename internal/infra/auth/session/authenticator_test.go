package session

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return pub, priv
}

func mint(t *testing.T, priv ed25519.PrivateKey, claims sessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims() sessionClaims {
	return sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(fixedNow.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
		},
		Roles: []string{"user"},
		Scope: "federations:read federations:write",
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	pub, priv := newKeys(t)
	auth, err := NewAuthenticator(base64.StdEncoding.EncodeToString(pub), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}

	req := httptest.NewRequest("POST", "/cpanel/list_federations", nil)
	req.Header.Set("Authorization", "Bearer "+mint(t, priv, validClaims()))

	principal, err := auth.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.Subject != "alice" {
		t.Fatalf("unexpected subject %q", principal.Subject)
	}
	if !reflect.DeepEqual(principal.Roles, []string{"user"}) {
		t.Fatalf("unexpected roles %v", principal.Roles)
	}
	if want := []string{"federations:read", "federations:write"}; !reflect.DeepEqual(principal.Scopes, want) {
		t.Fatalf("scopes = %v, want %v", principal.Scopes, want)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	pub, priv := newKeys(t)
	_, otherPriv := newKeys(t)
	auth, err := NewAuthenticator(base64.RawURLEncoding.EncodeToString(pub), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(fixedNow.Add(-time.Second))
	noExp := validClaims()
	noExp.ExpiresAt = nil
	noSubject := validClaims()
	noSubject.Subject = ""

	hmac, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hmac token: %v", err)
	}

	tests := map[string]string{
		"empty":       "",
		"garbage":     "not-a-token",
		"expired":     mint(t, priv, expired),
		"missing exp": mint(t, priv, noExp),
		"no subject":  mint(t, priv, noSubject),
		"wrong key":   mint(t, otherPriv, validClaims()),
		"wrong alg":   hmac,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := auth.AuthenticateToken(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestAuthenticate_RequiresBearerScheme(t *testing.T) {
	pub, priv := newKeys(t)
	auth, err := NewAuthenticator(base64.StdEncoding.EncodeToString(pub), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}

	req := httptest.NewRequest("POST", "/cpanel/list_federations", nil)
	req.Header.Set("Authorization", "Basic "+mint(t, priv, validClaims()))
	if _, err := auth.Authenticate(context.Background(), req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNewAuthenticator_RejectsBadKeys(t *testing.T) {
	if _, err := NewAuthenticator(""); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := NewAuthenticator(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Fatalf("expected error for short key")
	}
}
