package usecase

import (
	"context"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

// FederationRepository is the only writer of federation state.
// FindByID reports domain.ErrNotFound and Create reports domain.ErrConflict. Save upserts and
// stamps LastModified. DeleteByID returns the removed records, empty when nothing matched.
type FederationRepository interface {
	Create(ctx context.Context, fed domain.Federation) (domain.Federation, error)
	FindAll(ctx context.Context) ([]domain.Federation, error)
	FindByID(ctx context.Context, id string) (*domain.Federation, error)
	Save(ctx context.Context, fed domain.Federation) (domain.Federation, error)
	DeleteByID(ctx context.Context, id string) ([]domain.Federation, error)
	FindByMember(ctx context.Context, platformID string) ([]domain.Federation, error)
}

type OwnershipAuthority interface {
	OwnedServices(ctx context.Context, principal string) ([]domain.OwnedService, error)
}

type RequestVerifier interface {
	CheckJoinedFederationsRequest(ctx context.Context, platformID, securityRequest string) (domain.RequestVerdict, error)
}

type ResponseSigner interface {
	SignResponse() (string, error)
}

// Notifier propagates federation state to member platforms. Failures are absorbed by the implementation.
type Notifier interface {
	Notify(ctx context.Context, fed domain.Federation, targets []domain.FederationMember, op domain.NotificationOp)
}

type CreatePolicyInput struct {
	IsAdmin          bool     `json:"is_admin"`
	RequireOwnership bool     `json:"require_ownership"`
	DeclaredMembers  []string `json:"declared_member_ids"`
	OwnedMemberIDs   []string `json:"owned_member_ids"`
}

type CreatePolicy interface {
	AllowCreate(ctx context.Context, input CreatePolicyInput) (bool, error)
}

type OwnershipCache interface {
	Get(key string) ([]domain.OwnedService, bool)
	Set(key string, services []domain.OwnedService)
}

type OwnershipMetrics interface {
	ObserveOwnershipCheck(outcome string)
}

type InformationModelCatalog interface {
	InformationModelExists(ctx context.Context, id string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }
