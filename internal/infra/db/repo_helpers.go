package db

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

var errDBUnavailable = errors.New("db unavailable")

func toModel(fed domain.Federation) (FederationModel, error) {
	fed.Normalize()
	sla, err := json.Marshal(fed.SLAConstraints)
	if err != nil {
		return FederationModel{}, fmt.Errorf("encode sla constraints: %w", err)
	}
	members, err := json.Marshal(fed.Members)
	if err != nil {
		return FederationModel{}, fmt.Errorf("encode members: %w", err)
	}
	invitations, err := json.Marshal(fed.OpenInvitations)
	if err != nil {
		return FederationModel{}, fmt.Errorf("encode invitations: %w", err)
	}
	return FederationModel{
		ID:                  fed.ID,
		Name:                fed.Name,
		Public:              fed.Public,
		InformationModel:    fed.InformationModel,
		SLAConstraintsJSON:  sla,
		MembersJSON:         members,
		OpenInvitationsJSON: invitations,
		LastModified:        fed.LastModified.UTC(),
	}, nil
}

func fromModel(model FederationModel) (domain.Federation, error) {
	fed := domain.Federation{
		ID:               model.ID,
		Name:             model.Name,
		Public:           model.Public,
		InformationModel: model.InformationModel,
		LastModified:     model.LastModified.UTC(),
	}
	if err := decodeJSON(model.SLAConstraintsJSON, &fed.SLAConstraints); err != nil {
		return domain.Federation{}, fmt.Errorf("decode sla constraints of %s: %w", model.ID, err)
	}
	if err := decodeJSON(model.MembersJSON, &fed.Members); err != nil {
		return domain.Federation{}, fmt.Errorf("decode members of %s: %w", model.ID, err)
	}
	if err := decodeJSON(model.OpenInvitationsJSON, &fed.OpenInvitations); err != nil {
		return domain.Federation{}, fmt.Errorf("decode invitations of %s: %w", model.ID, err)
	}
	fed.Normalize()
	return fed, nil
}

func fromModels(models []FederationModel) ([]domain.Federation, error) {
	out := make([]domain.Federation, 0, len(models))
	for _, m := range models {
		fed, err := fromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, fed)
	}
	return out, nil
}

func decodeJSON(raw []byte, into any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, into)
}
