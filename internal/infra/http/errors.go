package http

import (
	"errors"
	"net/http"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindNotOwner, domain.KindConflict, domain.KindSoleMember, domain.KindNotMember:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuthorityUnreachable:
		return http.StatusInternalServerError
	case domain.KindAuthorityCommunication:
		return http.StatusBadGateway
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// writeError renders validation failures as a flat error_<field> map and everything else as code/message.
func writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && !verr.Empty() {
		c.JSON(http.StatusBadRequest, verr.Fields)
		return
	}
	kind := domain.KindOf(err)
	message := err.Error()

	var notOwner *domain.NotOwnerError
	var comm *domain.CommunicationError
	switch {
	case errors.As(err, &notOwner):
		message = notOwner.Error()
	case errors.As(err, &comm):
		message = comm.Message
	}
	logger := log.WithComponent("http")
	switch kind {
	case domain.KindInternal:
		logger.Error().Err(err).Str("request_id", c.GetString(requestIDContextKey)).Msg("internal error")
		message = "internal error"
	case domain.KindAuthorityUnreachable:
		logger.Error().Err(err).Msg("authority unreachable")
	}
	writeErrorCode(c, statusFor(kind), kind.String(), message)
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func invalidField(field, message string) error {
	verr := &domain.ValidationError{}
	verr.Add(field, message)
	return verr
}
