package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength = 3
	MaxNameLength = 30
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9-]{4,}$`)

func ValidFederationID(id string) bool {
	return idPattern.MatchString(id)
}

func ValidPlatformID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidateFederation checks field constraints of a create request. It returns *ValidationError or nil.
func ValidateFederation(f Federation) error {
	verr := &ValidationError{}

	if !ValidFederationID(f.ID) {
		verr.Add("id", "Federation id must contain only letters, digits and hyphens and be at least 4 characters long")
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(f.Name)); n < MinNameLength || n > MaxNameLength {
		verr.Add("name", fmt.Sprintf("Federation name must be between %d and %d characters", MinNameLength, MaxNameLength))
	}
	if f.InformationModel != "" && strings.TrimSpace(f.InformationModel) == "" {
		verr.Add("informationModel", "Information model id must not be blank")
	}

	if len(f.Members) == 0 {
		verr.Add("members", "A federation needs at least one member")
	}
	seen := make(map[string]struct{}, len(f.Members))
	for i, m := range f.Members {
		if !ValidPlatformID(m.PlatformID) {
			verr.Add(fmt.Sprintf("members_%d_platformId", i), "Invalid platform id")
		} else if _, dup := seen[m.PlatformID]; dup {
			verr.Add(fmt.Sprintf("members_%d_platformId", i), fmt.Sprintf("Platform %s is listed more than once", m.PlatformID))
		}
		seen[m.PlatformID] = struct{}{}
		if !validURL(m.InterworkingServiceURL) {
			verr.Add(fmt.Sprintf("members_%d_interworkingServiceURL", i), "Invalid interworking service URL")
		}
	}

	for i, c := range f.SLAConstraints {
		validateConstraint(verr, i, c)
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

func validateConstraint(verr *ValidationError, i int, c QoSConstraint) {
	prefix := fmt.Sprintf("slaConstraints_%d_", i)
	if c.Metric == "" && c.Comparator == "" && c.Threshold == nil {
		return
	}
	switch c.Metric {
	case QoSMetricAvailability, QoSMetricLoad:
	case "":
		verr.Add(prefix+"metric", "Metric is required")
	default:
		verr.Add(prefix+"metric", "Unknown metric "+string(c.Metric))
	}
	switch c.Comparator {
	case ComparatorLessThan, ComparatorLessThanOrEqual, ComparatorEqual, ComparatorGreaterThan, ComparatorGreaterThanOrEqual:
	case "":
		verr.Add(prefix+"comparator", "Comparator is required")
	default:
		verr.Add(prefix+"comparator", "Unknown comparator "+string(c.Comparator))
	}
	if c.Threshold == nil {
		verr.Add(prefix+"threshold", "Threshold is required")
	}
}

func validURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
