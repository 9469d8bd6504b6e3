package http

import (
	"net/http"

	"github.com/symbiote-h2020/Administration-sub000/internal/infra/metrics"

	"github.com/gin-gonic/gin"
)

type access int

const (
	accessPublic access = iota
	accessUser
	accessAdmin
	// accessService callers prove identity with a signed security request, checked by the use case.
	accessService
)

const (
	routeCreate           = "federations:create"
	routeList             = "federations:list"
	routeDelete           = "federations:delete"
	routeLeave            = "federations:leave"
	routeInvite           = "federations:invite"
	routeHandleInvitation = "federations:handle_invitation"
	routeAdminCreate      = "admin:federations:create"
	routeAdminList        = "admin:federations:list"
	routeAdminDelete      = "admin:federations:delete"
	routeAdminLeave       = "admin:federations:leave"
	routeJoined           = "federations:joined"
)

type route struct {
	method  string
	path    string
	name    string
	access  access
	limited bool
	handler gin.HandlerFunc
}

func (s *Server) routeTable() []route {
	return []route{
		{http.MethodPost, "/cpanel/create_federation", routeCreate, accessUser, true, s.handleCreate(false)},
		{http.MethodPost, "/cpanel/list_federations", routeList, accessUser, false, s.handleList(false)},
		{http.MethodPost, "/cpanel/delete_federation", routeDelete, accessUser, true, s.handleDelete(false)},
		{http.MethodPost, "/cpanel/leave_federation", routeLeave, accessUser, true, s.handleLeave(false)},
		{http.MethodPost, "/cpanel/federation_invite", routeInvite, accessUser, true, s.handleInvite},
		{http.MethodPost, "/cpanel/federation/handleInvitation", routeHandleInvitation, accessUser, true, s.handleInvitation},

		{http.MethodPost, "/admin/cpanel/create_federation", routeAdminCreate, accessAdmin, true, s.handleCreate(true)},
		{http.MethodPost, "/admin/cpanel/list_federations", routeAdminList, accessAdmin, false, s.handleList(true)},
		{http.MethodPost, "/admin/cpanel/delete_federation", routeAdminDelete, accessAdmin, true, s.handleDelete(true)},
		{http.MethodPost, "/admin/cpanel/leave_federation", routeAdminLeave, accessAdmin, true, s.handleLeave(true)},

		{http.MethodPost, "/administration/generic/joinedFederations", routeJoined, accessService, false, s.handleJoined},
	}
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealth)
	s.r.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, rt := range s.routeTable() {
		s.r.Handle(rt.method, rt.path, s.guard(rt), rt.handler)
	}
	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

// guard authenticates and rate limits before the handler runs.
func (s *Server) guard(rt route) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(routeContextKey, rt.name)
		switch rt.access {
		case accessUser:
			if _, ok := s.requireUser(c); !ok {
				c.Abort()
				return
			}
		case accessAdmin:
			if _, ok := s.requireAdmin(c); !ok {
				c.Abort()
				return
			}
		}
		if rt.limited {
			principal, _ := getPrincipal(c)
			if !s.enforceRateLimit(c, rt.name, principal) {
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": s.storeMode, "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": s.storeMode})
}
