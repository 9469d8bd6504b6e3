package rbac

import (
	"errors"
	"testing"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

func TestAuthorizer_ResolveRejectsAnonymous(t *testing.T) {
	authz := NewAuthorizer("")
	if _, err := authz.Resolve(domain.Principal{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthorizer_ResolveStampsAdmin(t *testing.T) {
	authz := NewAuthorizer("")
	principal, err := authz.Resolve(domain.Principal{Subject: "alice", Roles: []string{DefaultAdminRole}, Admin: false})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !principal.Admin {
		t.Fatalf("expected admin flag")
	}

	principal, err = authz.Resolve(domain.Principal{Subject: "bob", Admin: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.Admin {
		t.Fatalf("admin flag must not be taken from the caller")
	}
}

func TestAuthorizer_RequireAdmin(t *testing.T) {
	authz := NewAuthorizer("ops")
	err := authz.RequireAdmin(domain.Principal{Subject: "bob", Roles: []string{DefaultAdminRole}})
	authzErr, ok := IsAuthzError(err)
	if !ok {
		t.Fatalf("expected authz error, got %v", err)
	}
	if authzErr.Code != "MISSING_ROLE" || !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("unexpected error %v", err)
	}
	if err := authz.RequireAdmin(domain.Principal{Subject: "carol", Roles: []string{"ops"}}); err != nil {
		t.Fatalf("expected admin allow, got %v", err)
	}
	if err := authz.RequireAdmin(domain.Principal{Roles: []string{"ops"}}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
