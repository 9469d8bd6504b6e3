package rbac

import (
	"errors"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

const DefaultAdminRole = "administration_admin"

type AuthzError struct {
	Code string
	Err  error
}

func (e *AuthzError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code
}

func (e *AuthzError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Authorizer decides who counts as an administrator. The admin flag on a principal is
// only ever set here.
type Authorizer struct {
	adminRole string
}

func NewAuthorizer(adminRole string) *Authorizer {
	if adminRole == "" {
		adminRole = DefaultAdminRole
	}
	return &Authorizer{adminRole: adminRole}
}

func (a *Authorizer) AdminRole() string {
	return a.adminRole
}

// Resolve rejects anonymous principals and stamps the admin flag.
func (a *Authorizer) Resolve(principal domain.Principal) (domain.Principal, error) {
	if principal.Subject == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	principal.Admin = principal.HasRole(a.adminRole)
	return principal, nil
}

func (a *Authorizer) RequireAdmin(principal domain.Principal) error {
	if principal.Subject == "" {
		return domain.ErrUnauthorized
	}
	if !principal.HasRole(a.adminRole) {
		return &AuthzError{Code: "MISSING_ROLE", Err: domain.ErrForbidden}
	}
	return nil
}

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}
