// Package header reads the principal that an upstream gateway has already authenticated.
package header

import (
	"context"
	"net/http"
	"strings"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

const (
	HeaderSubject = "X-Principal-Subject"
	HeaderRoles   = "X-Principal-Roles"
	HeaderScopes  = "X-Principal-Scopes"
)

type Authenticator struct{}

func NewAuthenticator() *Authenticator {
	return &Authenticator{}
}

func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) (domain.Principal, error) {
	principal := domain.Principal{
		Subject: strings.TrimSpace(r.Header.Get(HeaderSubject)),
	}
	if principal.Subject == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	if roles := strings.TrimSpace(r.Header.Get(HeaderRoles)); roles != "" {
		principal.Roles = splitCSV(roles)
	}
	if scopes := strings.TrimSpace(r.Header.Get(HeaderScopes)); scopes != "" {
		principal.Scopes = splitCSV(scopes)
	}
	return principal, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
