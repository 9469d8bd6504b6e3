package usecase

import (
	"context"
	"errors"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

const (
	ownershipGranted     = "granted"
	ownershipDenied      = "denied"
	ownershipUnreachable = "unreachable"
	ownershipFault       = "fault"
	ownershipCached      = "cached"
)

// OwnershipGate answers whether a principal owns a platform, asking the external authority.
type OwnershipGate struct {
	Authority OwnershipAuthority
	Cache     OwnershipCache
	Metrics   OwnershipMetrics
}

func NewOwnershipGate(authority OwnershipAuthority, cache OwnershipCache) *OwnershipGate {
	return &OwnershipGate{Authority: authority, Cache: cache}
}

// OwnedServices lists the services owned by the principal. Authority errors are never cached.
func (g *OwnershipGate) OwnedServices(ctx context.Context, principal domain.Principal) ([]domain.OwnedService, error) {
	if g == nil || g.Authority == nil {
		return nil, errors.New("ownership authority is required")
	}
	if principal.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	if g.Cache != nil {
		if services, ok := g.Cache.Get(principal.Subject); ok {
			g.observe(ownershipCached)
			return services, nil
		}
	}
	services, err := g.Authority.OwnedServices(ctx, principal.Subject)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuthorityUnreachable):
			g.observe(ownershipUnreachable)
		default:
			g.observe(ownershipFault)
		}
		return nil, err
	}
	if g.Cache != nil {
		g.Cache.Set(principal.Subject, services)
	}
	return services, nil
}

func (g *OwnershipGate) CheckOwnership(ctx context.Context, principal domain.Principal, platformID string) (domain.OwnedService, error) {
	services, err := g.OwnedServices(ctx, principal)
	if err != nil {
		return domain.OwnedService{}, err
	}
	for _, svc := range services {
		if svc.ServiceInstanceID == platformID {
			g.observe(ownershipGranted)
			return svc, nil
		}
	}
	g.observe(ownershipDenied)
	return domain.OwnedService{}, &domain.NotOwnerError{PlatformID: platformID}
}

// CheckAnyOwnership succeeds when the principal owns at least one of platformIDs.
// The denial names the first candidate.
func (g *OwnershipGate) CheckAnyOwnership(ctx context.Context, principal domain.Principal, platformIDs []string) (domain.OwnedService, error) {
	if len(platformIDs) == 0 {
		return domain.OwnedService{}, &domain.NotOwnerError{}
	}
	services, err := g.OwnedServices(ctx, principal)
	if err != nil {
		return domain.OwnedService{}, err
	}
	owned := make(map[string]domain.OwnedService, len(services))
	for _, svc := range services {
		owned[svc.ServiceInstanceID] = svc
	}
	for _, id := range platformIDs {
		if svc, ok := owned[id]; ok {
			g.observe(ownershipGranted)
			return svc, nil
		}
	}
	g.observe(ownershipDenied)
	return domain.OwnedService{}, &domain.NotOwnerError{PlatformID: platformIDs[0]}
}

// OwnedAmong returns the subset of platformIDs the principal owns, in input order.
func (g *OwnershipGate) OwnedAmong(ctx context.Context, principal domain.Principal, platformIDs []string) ([]string, error) {
	services, err := g.OwnedServices(ctx, principal)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]struct{}, len(services))
	for _, svc := range services {
		owned[svc.ServiceInstanceID] = struct{}{}
	}
	out := make([]string, 0, len(platformIDs))
	for _, id := range platformIDs {
		if _, ok := owned[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (g *OwnershipGate) observe(outcome string) {
	if g.Metrics != nil {
		g.Metrics.ObserveOwnershipCheck(outcome)
	}
}
