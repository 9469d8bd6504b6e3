package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

type JoinedFederationsQuery struct {
	Store    FederationRepository
	Verifier RequestVerifier
	Signer   ResponseSigner
}

// JoinedFederationsResult always carries the signed service response, also when err is set.
type JoinedFederationsResult struct {
	Federations     []domain.Federation
	ServiceResponse string
}

func NewJoinedFederationsQuery(store FederationRepository, verifier RequestVerifier, signer ResponseSigner) *JoinedFederationsQuery {
	return &JoinedFederationsQuery{Store: store, Verifier: verifier, Signer: signer}
}

func (q *JoinedFederationsQuery) Joined(ctx context.Context, platformID, securityRequest string) (JoinedFederationsResult, error) {
	if q == nil || q.Store == nil || q.Verifier == nil || q.Signer == nil {
		return JoinedFederationsResult{}, errors.New("joined federations query is not configured")
	}
	signed, err := q.Signer.SignResponse()
	if err != nil {
		return JoinedFederationsResult{}, fmt.Errorf("sign service response: %w", err)
	}
	result := JoinedFederationsResult{ServiceResponse: signed}

	if !domain.ValidPlatformID(platformID) {
		verr := &domain.ValidationError{}
		verr.Add("platformId", "Invalid platform id")
		return result, verr
	}
	if securityRequest == "" {
		return result, fmt.Errorf("%w: missing security request", domain.ErrUnauthorized)
	}

	verdict, err := q.Verifier.CheckJoinedFederationsRequest(ctx, platformID, securityRequest)
	if err != nil {
		return result, err
	}
	if !verdict.Valid {
		reason := verdict.Reason
		if reason == "" {
			reason = "security request verification failed"
		}
		return result, fmt.Errorf("%w: %s", domain.ErrUnauthorized, reason)
	}

	feds, err := q.Store.FindByMember(ctx, platformID)
	if err != nil {
		return result, err
	}
	sort.Slice(feds, func(i, j int) bool { return feds[i].ID < feds[j].ID })
	for i := range feds {
		feds[i].Normalize()
	}
	result.Federations = feds
	return result, nil
}
