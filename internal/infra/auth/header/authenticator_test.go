package header

import (
	"context"
	"errors"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

func TestAuthenticate_ReadsHeaders(t *testing.T) {
	req := httptest.NewRequest("POST", "/cpanel/list_federations", nil)
	req.Header.Set(HeaderSubject, " alice ")
	req.Header.Set(HeaderRoles, "user, ,administration_admin")
	req.Header.Set(HeaderScopes, "federations:write")

	principal, err := NewAuthenticator().Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.Subject != "alice" {
		t.Fatalf("unexpected subject %q", principal.Subject)
	}
	if want := []string{"user", "administration_admin"}; !reflect.DeepEqual(principal.Roles, want) {
		t.Fatalf("roles = %v, want %v", principal.Roles, want)
	}
	if want := []string{"federations:write"}; !reflect.DeepEqual(principal.Scopes, want) {
		t.Fatalf("scopes = %v, want %v", principal.Scopes, want)
	}
	if principal.Admin {
		t.Fatalf("admin must be decided by the authorizer, not the header")
	}
}

func TestAuthenticate_MissingSubject(t *testing.T) {
	req := httptest.NewRequest("POST", "/cpanel/list_federations", nil)
	req.Header.Set(HeaderRoles, "user")
	if _, err := NewAuthenticator().Authenticate(context.Background(), req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
