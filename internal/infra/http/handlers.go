package http

import (
	"net/http"
	"strings"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/security"

	"github.com/gin-gonic/gin"
)

type listRequest struct {
	OnlyPublic bool `json:"onlyPublic" form:"onlyPublic"`
}

type deleteRequest struct {
	FederationIDToDelete string `json:"federationIdToDelete" form:"federationIdToDelete"`
}

type leaveRequest struct {
	FederationID string `json:"federationId" form:"federationId"`
	PlatformID   string `json:"platformId" form:"platformId"`
}

type inviteRequest struct {
	FederationID string   `json:"federationId" form:"federationId"`
	PlatformIDs  []string `json:"platformIds" form:"platformIds"`
}

type invitationResponseRequest struct {
	FederationID string `json:"federationId" form:"federationId"`
	PlatformID   string `json:"platformId" form:"platformId"`
	Accepted     *bool  `json:"accepted" form:"accepted"`
}

type joinedRequest struct {
	PlatformID string `json:"platformId" form:"platformId"`
}

func federationMap(feds ...domain.Federation) map[string]domain.Federation {
	out := make(map[string]domain.Federation, len(feds))
	for _, fed := range feds {
		out[fed.ID] = fed
	}
	return out
}

func (s *Server) handleCreate(isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var draft domain.Federation
		if err := c.ShouldBindJSON(&draft); err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
			return
		}
		if !s.enforceFederationLimit(c, draft.ID) {
			return
		}
		principal, _ := getPrincipal(c)
		created, err := s.federations.Create(c.Request.Context(), draft, principal, isAdmin)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func (s *Server) handleList(isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req listRequest
		if err := c.ShouldBind(&req); err != nil && c.Request.ContentLength > 0 {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
			return
		}
		feds, err := s.federations.List(c.Request.Context(), req.OnlyPublic && !isAdmin)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, federationMap(feds...))
	}
}

func (s *Server) handleDelete(isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deleteRequest
		if err := c.ShouldBind(&req); err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
			return
		}
		id := strings.TrimSpace(req.FederationIDToDelete)
		if id == "" {
			writeError(c, invalidField("federationIdToDelete", "Federation id is required"))
			return
		}
		if !s.enforceFederationLimit(c, id) {
			return
		}
		principal, _ := getPrincipal(c)
		deleted, err := s.federations.Delete(c.Request.Context(), id, principal, isAdmin)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, federationMap(deleted))
	}
}

func (s *Server) handleLeave(isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req leaveRequest
		if err := c.ShouldBind(&req); err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
			return
		}
		if err := requireIDs(req.FederationID, req.PlatformID); err != nil {
			writeError(c, err)
			return
		}
		if !s.enforceFederationLimit(c, req.FederationID) {
			return
		}
		principal, _ := getPrincipal(c)
		updated, err := s.federations.Leave(c.Request.Context(), req.FederationID, req.PlatformID, principal, isAdmin)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, federationMap(updated))
	}
}

func (s *Server) handleInvite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBind(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	if strings.TrimSpace(req.FederationID) == "" {
		writeError(c, invalidField("federationId", "Federation id is required"))
		return
	}
	if !s.enforceFederationLimit(c, req.FederationID) {
		return
	}
	principal, _ := getPrincipal(c)
	updated, err := s.federations.Invite(c.Request.Context(), req.FederationID, req.PlatformIDs, principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleInvitation(c *gin.Context) {
	var req invitationResponseRequest
	if err := c.ShouldBind(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	if err := requireIDs(req.FederationID, req.PlatformID); err != nil {
		writeError(c, err)
		return
	}
	if req.Accepted == nil {
		writeError(c, invalidField("accepted", "accepted is required"))
		return
	}
	if !s.enforceFederationLimit(c, req.FederationID) {
		return
	}
	principal, _ := getPrincipal(c)
	updated, err := s.federations.HandleInvitation(c.Request.Context(), req.FederationID, req.PlatformID, *req.Accepted, principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, federationMap(updated))
}

// handleJoined answers other platforms. The signed service response is attached on every outcome.
func (s *Server) handleJoined(c *gin.Context) {
	var req joinedRequest
	if err := c.ShouldBind(&req); err != nil {
		// an unreadable body is answered as a missing platform id, still signed
		req = joinedRequest{}
	}
	result, err := s.joined.Joined(c.Request.Context(), strings.TrimSpace(req.PlatformID), c.GetHeader(security.HeaderSecurityRequest))
	if result.ServiceResponse != "" {
		c.Header(security.HeaderSecurityResponse, result.ServiceResponse)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Federations)
}

func requireIDs(federationID, platformID string) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(federationID) == "" {
		verr.Add("federationId", "Federation id is required")
	}
	if strings.TrimSpace(platformID) == "" {
		verr.Add("platformId", "Platform id is required")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}
