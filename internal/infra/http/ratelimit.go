package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/metrics"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"

	"github.com/gin-gonic/gin"
)

func (s *Server) enforceRateLimit(c *gin.Context, routeName string, principal domain.Principal) bool {
	return s.allow(c, routeName, domain.RateLimitKey(principal.Subject, routeName), s.rateLimitRequests)
}

// enforceFederationLimit spends one unit of the federation's mutation budget.
func (s *Server) enforceFederationLimit(c *gin.Context, federationID string) bool {
	return s.allow(c, c.GetString(routeContextKey), domain.FederationRateLimitKey(federationID), s.rateLimitFederation)
}

func (s *Server) allow(c *gin.Context, routeName, key string, limit int) bool {
	if s.rateLimiter == nil || limit <= 0 {
		return true
	}
	decision, err := s.rateLimiter.Allow(c.Request.Context(), key, limit, s.rateLimitWindow)
	if err != nil {
		if s.rateLimitFailClosed {
			writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMIT_UNAVAILABLE", "rate limiter unavailable")
			return false
		}
		logger := log.WithComponent("http")
		logger.Warn().Err(err).Str("route", routeName).Str("key", key).Msg("rate limiter failed open")
		return true
	}
	writeRateLimitHeaders(c, decision)
	if !decision.Allowed {
		metrics.RateLimitedTotal.WithLabelValues(routeName).Inc()
		writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		return false
	}
	return true
}

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}
