package domain

import "slices"

type Principal struct {
	Subject string
	Roles   []string
	Scopes  []string
	// Admin is set by the authorizer, never taken from the request.
	Admin bool
}

func (p Principal) HasRole(role string) bool {
	return role != "" && slices.Contains(p.Roles, role)
}

// OwnedService is one service instance the authority attributes to a principal.
type OwnedService struct {
	ServiceInstanceID      string `json:"serviceInstanceId"`
	InstanceFriendlyName   string `json:"instanceFriendlyName"`
	InterworkingServiceURL string `json:"interworkingServiceURL"`
}

// RequestVerdict is the authority's answer about a signed inter-service request.
type RequestVerdict struct {
	Valid  bool
	Reason string
}
