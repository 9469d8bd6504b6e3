package domain

import (
	"slices"
	"time"
)

type InvitationStatus string

// Accepted and rejected invitations are removed, so PENDING is the only stored status.
const InvitationPending InvitationStatus = "PENDING"

type QoSMetric string

const (
	QoSMetricAvailability QoSMetric = "availability"
	QoSMetricLoad         QoSMetric = "load"
)

type Comparator string

const (
	ComparatorLessThan           Comparator = "lessThan"
	ComparatorLessThanOrEqual    Comparator = "lessThanOrEqual"
	ComparatorEqual              Comparator = "equal"
	ComparatorGreaterThan        Comparator = "greaterThan"
	ComparatorGreaterThanOrEqual Comparator = "greaterThanOrEqual"
)

type QoSConstraint struct {
	Metric     QoSMetric  `json:"metric,omitempty"`
	Comparator Comparator `json:"comparator,omitempty"`
	Threshold  *float64   `json:"threshold,omitempty"`
}

type FederationMember struct {
	PlatformID             string `json:"platformId"`
	InterworkingServiceURL string `json:"interworkingServiceURL"`
}

type FederationInvitation struct {
	InvitedPlatformID string           `json:"invitedPlatformId"`
	Status            InvitationStatus `json:"status"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// Federation is the aggregate root. Members keep join order; the first member is the founder.
type Federation struct {
	ID               string                          `json:"id"`
	Name             string                          `json:"name"`
	Public           bool                            `json:"public"`
	InformationModel string                          `json:"informationModel,omitempty"`
	SLAConstraints   []QoSConstraint                 `json:"slaConstraints"`
	Members          []FederationMember              `json:"members"`
	OpenInvitations  map[string]FederationInvitation `json:"openInvitations"`
	LastModified     time.Time                       `json:"lastModified"`
}

func (f Federation) MemberIndex(platformID string) int {
	for i, m := range f.Members {
		if m.PlatformID == platformID {
			return i
		}
	}
	return -1
}

func (f Federation) HasMember(platformID string) bool {
	return f.MemberIndex(platformID) >= 0
}

func (f Federation) MemberIDs() []string {
	ids := make([]string, 0, len(f.Members))
	for _, m := range f.Members {
		ids = append(ids, m.PlatformID)
	}
	return ids
}

// AddMember appends the member unless its platform is already present.
func (f *Federation) AddMember(member FederationMember) bool {
	if f.HasMember(member.PlatformID) {
		return false
	}
	f.Members = append(f.Members, member)
	return true
}

func (f *Federation) RemoveMember(platformID string) (FederationMember, bool) {
	idx := f.MemberIndex(platformID)
	if idx < 0 {
		return FederationMember{}, false
	}
	removed := f.Members[idx]
	f.Members = slices.Delete(f.Members, idx, idx+1)
	return removed, true
}

// Invite records a pending invitation. Members are never invited.
func (f *Federation) Invite(platformID string, at time.Time) bool {
	if f.HasMember(platformID) {
		return false
	}
	if f.OpenInvitations == nil {
		f.OpenInvitations = make(map[string]FederationInvitation)
	}
	f.OpenInvitations[platformID] = FederationInvitation{
		InvitedPlatformID: platformID,
		Status:            InvitationPending,
		CreatedAt:         at,
	}
	return true
}

func (f *Federation) ClearInvitation(platformID string) bool {
	if _, ok := f.OpenInvitations[platformID]; !ok {
		return false
	}
	delete(f.OpenInvitations, platformID)
	return true
}

func (f Federation) Clone() Federation {
	out := f
	out.Members = slices.Clone(f.Members)
	out.SLAConstraints = make([]QoSConstraint, len(f.SLAConstraints))
	for i, c := range f.SLAConstraints {
		if c.Threshold != nil {
			v := *c.Threshold
			c.Threshold = &v
		}
		out.SLAConstraints[i] = c
	}
	out.OpenInvitations = make(map[string]FederationInvitation, len(f.OpenInvitations))
	for k, v := range f.OpenInvitations {
		out.OpenInvitations[k] = v
	}
	return out
}

// Normalize replaces nil collections so the JSON shape is stable.
func (f *Federation) Normalize() {
	if f.Members == nil {
		f.Members = []FederationMember{}
	}
	if f.SLAConstraints == nil {
		f.SLAConstraints = []QoSConstraint{}
	}
	if f.OpenInvitations == nil {
		f.OpenInvitations = map[string]FederationInvitation{}
	}
}
