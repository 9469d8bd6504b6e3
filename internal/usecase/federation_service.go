package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

// FederationService runs the federation lifecycle. Every mutation is gated on ownership,
// committed to the store, and only then handed to the notifier.
type FederationService struct {
	Store    FederationRepository
	Gate     *OwnershipGate
	Notifier Notifier
	Policy   CreatePolicy
	Models   InformationModelCatalog
	Clock    Clock

	// RequireCreatorOwnership makes non-admin creates prove ownership of a declared member.
	RequireCreatorOwnership bool

	once  sync.Once
	locks *keyedMutex
}

type FederationServiceOption func(*FederationService)

func WithCreatePolicy(policy CreatePolicy) FederationServiceOption {
	return func(s *FederationService) { s.Policy = policy }
}

func WithInformationModels(models InformationModelCatalog) FederationServiceOption {
	return func(s *FederationService) { s.Models = models }
}

func WithClock(clock Clock) FederationServiceOption {
	return func(s *FederationService) { s.Clock = clock }
}

func WithCreatorOwnership(required bool) FederationServiceOption {
	return func(s *FederationService) { s.RequireCreatorOwnership = required }
}

func NewFederationService(store FederationRepository, gate *OwnershipGate, notifier Notifier, opts ...FederationServiceOption) *FederationService {
	s := &FederationService{
		Store:    store,
		Gate:     gate,
		Notifier: notifier,
		Clock:    SystemClock(),
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FederationService) ready() error {
	if s == nil {
		return errors.New("federation service is nil")
	}
	if s.Store == nil {
		return errors.New("federation repository is required")
	}
	s.once.Do(func() {
		if s.locks == nil {
			s.locks = newKeyedMutex()
		}
		if s.Clock == nil {
			s.Clock = SystemClock()
		}
	})
	return nil
}

// List returns federations ordered by id.
func (s *FederationService) List(ctx context.Context, onlyPublic bool) ([]domain.Federation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.Store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Federation, 0, len(all))
	for _, fed := range all {
		if onlyPublic && !fed.Public {
			continue
		}
		fed.Normalize()
		out = append(out, fed)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FederationService) Create(ctx context.Context, draft domain.Federation, principal domain.Principal, isAdmin bool) (domain.Federation, error) {
	if err := s.ready(); err != nil {
		return domain.Federation{}, err
	}
	if err := domain.ValidateFederation(draft); err != nil {
		return domain.Federation{}, err
	}
	if err := s.checkInformationModel(ctx, draft.InformationModel); err != nil {
		return domain.Federation{}, err
	}

	unlock := s.locks.Lock(draft.ID)
	defer unlock()

	if _, err := s.Store.FindByID(ctx, draft.ID); err == nil {
		return domain.Federation{}, fmt.Errorf("%w: federation with id %s already exists", domain.ErrConflict, draft.ID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Federation{}, err
	}

	if err := s.authorizeCreate(ctx, draft, principal, isAdmin); err != nil {
		return domain.Federation{}, err
	}

	fed := draft.Clone()
	fed.OpenInvitations = map[string]domain.FederationInvitation{}
	fed.LastModified = s.Clock.Now()
	fed.Normalize()

	created, err := s.Store.Create(ctx, fed)
	if err != nil {
		return domain.Federation{}, err
	}
	s.notify(ctx, created, created.Members, domain.NotifyUpsert)
	return created, nil
}

func (s *FederationService) authorizeCreate(ctx context.Context, draft domain.Federation, principal domain.Principal, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	memberIDs := draft.MemberIDs()
	input := CreatePolicyInput{
		IsAdmin:          isAdmin,
		RequireOwnership: s.RequireCreatorOwnership,
		DeclaredMembers:  memberIDs,
		OwnedMemberIDs:   []string{},
	}
	if s.RequireCreatorOwnership {
		if s.Gate == nil {
			return errors.New("ownership gate is required")
		}
		owned, err := s.Gate.OwnedAmong(ctx, principal, memberIDs)
		if err != nil {
			return err
		}
		input.OwnedMemberIDs = owned
	}

	allowed := !input.RequireOwnership || len(input.OwnedMemberIDs) > 0
	if s.Policy != nil {
		var err error
		allowed, err = s.Policy.AllowCreate(ctx, input)
		if err != nil {
			return fmt.Errorf("create policy: %w", err)
		}
	}
	if !allowed {
		return &domain.NotOwnerError{PlatformID: memberIDs[0]}
	}
	return nil
}

func (s *FederationService) checkInformationModel(ctx context.Context, modelID string) error {
	if modelID == "" || s.Models == nil {
		return nil
	}
	exists, err := s.Models.InformationModelExists(ctx, modelID)
	if err != nil {
		return err
	}
	if !exists {
		verr := &domain.ValidationError{}
		verr.Add("informationModel", fmt.Sprintf("Information model %s does not exist", modelID))
		return verr
	}
	return nil
}

// Delete removes the federation regardless of its size and tells every former member.
func (s *FederationService) Delete(ctx context.Context, federationID string, principal domain.Principal, isAdmin bool) (domain.Federation, error) {
	if err := s.ready(); err != nil {
		return domain.Federation{}, err
	}
	unlock := s.locks.Lock(federationID)
	defer unlock()

	fed, err := s.Store.FindByID(ctx, federationID)
	if err != nil {
		return domain.Federation{}, err
	}
	if !isAdmin {
		if _, err := s.requireGate().CheckAnyOwnership(ctx, principal, fed.MemberIDs()); err != nil {
			return domain.Federation{}, err
		}
	}

	deleted, err := s.Store.DeleteByID(ctx, federationID)
	if err != nil {
		return domain.Federation{}, err
	}
	if len(deleted) == 0 {
		return domain.Federation{}, fmt.Errorf("federation %s: %w", federationID, domain.ErrNotFound)
	}
	gone := deleted[0]
	gone.Normalize()
	s.notify(ctx, gone, gone.Members, domain.NotifyDelete)
	return gone, nil
}

// Invite opens a PENDING invitation for every platform that is not already a member.
// Only current members are notified.
func (s *FederationService) Invite(ctx context.Context, federationID string, platformIDs []string, principal domain.Principal) (domain.Federation, error) {
	if err := s.ready(); err != nil {
		return domain.Federation{}, err
	}
	if err := validateInvitees(platformIDs); err != nil {
		return domain.Federation{}, err
	}
	unlock := s.locks.Lock(federationID)
	defer unlock()

	fed, err := s.Store.FindByID(ctx, federationID)
	if err != nil {
		return domain.Federation{}, err
	}
	if _, err := s.requireGate().CheckAnyOwnership(ctx, principal, fed.MemberIDs()); err != nil {
		return domain.Federation{}, err
	}

	now := s.Clock.Now()
	next := fed.Clone()
	for _, id := range platformIDs {
		next.Invite(id, now)
	}

	saved, err := s.Store.Save(ctx, next)
	if err != nil {
		return domain.Federation{}, err
	}
	saved.Normalize()
	s.notify(ctx, saved, saved.Members, domain.NotifyUpsert)
	return saved, nil
}

func validateInvitees(platformIDs []string) error {
	verr := &domain.ValidationError{}
	if len(platformIDs) == 0 {
		verr.Add("platformIds", "At least one platform must be invited")
	}
	for i, id := range platformIDs {
		if !domain.ValidPlatformID(id) {
			verr.Add(fmt.Sprintf("platformIds_%d", i), "Invalid platform id")
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// HandleInvitation resolves the open invitation of platformID. A missing invitation is
// treated as already resolved and returns the federation untouched.
func (s *FederationService) HandleInvitation(ctx context.Context, federationID, platformID string, accepted bool, principal domain.Principal) (domain.Federation, error) {
	if err := s.ready(); err != nil {
		return domain.Federation{}, err
	}
	unlock := s.locks.Lock(federationID)
	defer unlock()

	fed, err := s.Store.FindByID(ctx, federationID)
	if err != nil {
		return domain.Federation{}, err
	}
	owned, err := s.requireGate().CheckOwnership(ctx, principal, platformID)
	if err != nil {
		return domain.Federation{}, err
	}
	if _, open := fed.OpenInvitations[platformID]; !open {
		out := fed.Clone()
		out.Normalize()
		return out, nil
	}

	next := fed.Clone()
	next.ClearInvitation(platformID)
	if accepted {
		next.AddMember(domain.FederationMember{
			PlatformID:             platformID,
			InterworkingServiceURL: owned.InterworkingServiceURL,
		})
	}

	saved, err := s.Store.Save(ctx, next)
	if err != nil {
		return domain.Federation{}, err
	}
	saved.Normalize()
	if accepted {
		s.notify(ctx, saved, saved.Members, domain.NotifyUpsert)
	}
	return saved, nil
}

// Leave removes platformID and notifies the remaining members. The last member cannot leave.
func (s *FederationService) Leave(ctx context.Context, federationID, platformID string, principal domain.Principal, isAdmin bool) (domain.Federation, error) {
	if err := s.ready(); err != nil {
		return domain.Federation{}, err
	}
	unlock := s.locks.Lock(federationID)
	defer unlock()

	fed, err := s.Store.FindByID(ctx, federationID)
	if err != nil {
		return domain.Federation{}, err
	}
	if !isAdmin {
		if _, err := s.requireGate().CheckOwnership(ctx, principal, platformID); err != nil {
			return domain.Federation{}, err
		}
	}
	if len(fed.Members) <= 1 {
		return domain.Federation{}, fmt.Errorf("%w: platform %s is the only member of federation %s, delete the federation instead",
			domain.ErrSoleMember, platformID, federationID)
	}
	if !fed.HasMember(platformID) {
		return domain.Federation{}, fmt.Errorf("%w: platform %s is not a member of federation %s", domain.ErrNotMember, platformID, federationID)
	}

	next := fed.Clone()
	next.RemoveMember(platformID)

	saved, err := s.Store.Save(ctx, next)
	if err != nil {
		return domain.Federation{}, err
	}
	saved.Normalize()
	s.notify(ctx, saved, saved.Members, domain.NotifyUpsert)
	return saved, nil
}

func (s *FederationService) requireGate() *OwnershipGate {
	if s.Gate == nil {
		return &OwnershipGate{}
	}
	return s.Gate
}

func (s *FederationService) notify(ctx context.Context, fed domain.Federation, targets []domain.FederationMember, op domain.NotificationOp) {
	if s.Notifier == nil || len(targets) == 0 {
		return
	}
	snapshot := fed.Clone()
	s.Notifier.Notify(ctx, snapshot, append([]domain.FederationMember(nil), targets...), op)
}
