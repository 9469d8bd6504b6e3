package domain

import (
	"context"
	"fmt"
	"time"
)

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}

func RateLimitKey(subject, route string) string {
	if subject == "" {
		subject = "anonymous"
	}
	return fmt.Sprintf("principal:%s:route:%s", subject, route)
}

// FederationRateLimitKey is shared by every caller mutating the federation; each mutation
// fans out to all of its members.
func FederationRateLimitKey(federationID string) string {
	return fmt.Sprintf("federation:%s:mutations", federationID)
}
