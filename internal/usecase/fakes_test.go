package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

type memStore struct {
	mu     sync.Mutex
	feds   map[string]domain.Federation
	writes int
	tick   time.Time
}

func newMemStore(feds ...domain.Federation) *memStore {
	s := &memStore{feds: map[string]domain.Federation{}, tick: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, f := range feds {
		f.Normalize()
		s.feds[f.ID] = f.Clone()
	}
	return s
}

func (s *memStore) Create(_ context.Context, fed domain.Federation) (domain.Federation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feds[fed.ID]; ok {
		return domain.Federation{}, domain.ErrConflict
	}
	s.writes++
	s.feds[fed.ID] = fed.Clone()
	return fed.Clone(), nil
}

func (s *memStore) FindAll(_ context.Context) ([]domain.Federation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Federation, 0, len(s.feds))
	for _, f := range s.feds {
		out = append(out, f.Clone())
	}
	return out, nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*domain.Federation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.feds[id]
	if !ok {
		return nil, fmt.Errorf("federation %s: %w", id, domain.ErrNotFound)
	}
	c := f.Clone()
	return &c, nil
}

func (s *memStore) Save(_ context.Context, fed domain.Federation) (domain.Federation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	s.tick = s.tick.Add(time.Second)
	fed = fed.Clone()
	fed.LastModified = s.tick
	s.feds[fed.ID] = fed
	return fed.Clone(), nil
}

func (s *memStore) DeleteByID(_ context.Context, id string) ([]domain.Federation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.feds[id]
	if !ok {
		return nil, nil
	}
	s.writes++
	delete(s.feds, id)
	return []domain.Federation{f}, nil
}

func (s *memStore) FindByMember(_ context.Context, platformID string) ([]domain.Federation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Federation
	for _, f := range s.feds {
		if f.HasMember(platformID) {
			out = append(out, f.Clone())
		}
	}
	return out, nil
}

func (s *memStore) get(id string) (domain.Federation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.feds[id]
	return f.Clone(), ok
}

// stubAuthority maps principal subjects to the platforms they own.
type stubAuthority struct {
	mu    sync.Mutex
	owned map[string][]string
	err   error
	calls int
}

func (a *stubAuthority) OwnedServices(_ context.Context, principal string) ([]domain.OwnedService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	var out []domain.OwnedService
	for _, id := range a.owned[principal] {
		out = append(out, domain.OwnedService{
			ServiceInstanceID:      id,
			InstanceFriendlyName:   "Platform " + id,
			InterworkingServiceURL: "https://" + id + ".example",
		})
	}
	return out, nil
}

type notification struct {
	FederationID string
	Targets      []string
	Op           domain.NotificationOp
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *recordingNotifier) Notify(_ context.Context, fed domain.Federation, targets []domain.FederationMember, op domain.NotificationOp) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.PlatformID)
	}
	n.calls = append(n.calls, notification{FederationID: fed.ID, Targets: ids, Op: op})
}

// pushes counts individual outbound calls across all fan-outs.
func (n *recordingNotifier) pushes() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, c := range n.calls {
		total += len(c.Targets)
	}
	return total
}

func (n *recordingNotifier) last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return notification{}
	}
	return n.calls[len(n.calls)-1]
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func federation(id string, members ...string) domain.Federation {
	f := domain.Federation{ID: id, Name: "Federation " + id}
	for _, m := range members {
		f.Members = append(f.Members, domain.FederationMember{PlatformID: m, InterworkingServiceURL: "https://" + m + ".example"})
	}
	return f
}

func ownerOf(platformID string) domain.Principal {
	return domain.Principal{Subject: "owner-" + platformID}
}

func authorityFor(platformIDs ...string) *stubAuthority {
	a := &stubAuthority{owned: map[string][]string{}}
	for _, id := range platformIDs {
		a.owned["owner-"+id] = append(a.owned["owner-"+id], id)
	}
	return a
}
