package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/auth/rbac"

	"github.com/gin-gonic/gin"
)

const (
	principalContextKey = "principal"
	headerAdminKey      = "X-Admin-Key"
	adminKeySubject     = "admin-key"
)

func (s *Server) requireUser(c *gin.Context) (domain.Principal, bool) {
	if s.authInitErr != nil || s.authenticator == nil {
		writeErrorCode(c, http.StatusInternalServerError, "AUTH_CONFIG_ERROR", "auth configuration error")
		return domain.Principal{}, false
	}
	principal, err := s.authenticator.Authenticate(c.Request.Context(), c.Request)
	if err != nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return domain.Principal{}, false
	}
	principal, err = s.authorizer.Resolve(principal)
	if err != nil {
		writeAuthzError(c, err)
		return domain.Principal{}, false
	}
	c.Set(principalContextKey, principal)
	return principal, true
}

// requireAdmin accepts either the configured X-Admin-Key or an authenticated principal with the admin role.
func (s *Server) requireAdmin(c *gin.Context) (domain.Principal, bool) {
	if s.adminAPIKey != "" {
		if key := strings.TrimSpace(c.GetHeader(headerAdminKey)); key != "" {
			if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
				writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin key")
				return domain.Principal{}, false
			}
			principal := domain.Principal{
				Subject: adminKeySubject,
				Roles:   []string{s.authorizer.AdminRole()},
				Admin:   true,
			}
			c.Set(principalContextKey, principal)
			return principal, true
		}
	}
	principal, ok := s.requireUser(c)
	if !ok {
		return domain.Principal{}, false
	}
	if err := s.authorizer.RequireAdmin(principal); err != nil {
		writeAuthzError(c, err)
		return domain.Principal{}, false
	}
	return principal, true
}

func getPrincipal(c *gin.Context) (domain.Principal, bool) {
	raw, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := raw.(domain.Principal)
	return principal, ok
}

func writeAuthzError(c *gin.Context, err error) {
	if authz, ok := rbac.IsAuthzError(err); ok {
		writeErrorCode(c, http.StatusForbidden, authz.Code, "forbidden")
		return
	}
	writeError(c, err)
}
