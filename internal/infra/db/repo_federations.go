package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FederationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewFederationRepository(db *gorm.DB) *FederationRepository {
	return &FederationRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *FederationRepository) Create(ctx context.Context, fed domain.Federation) (domain.Federation, error) {
	if r.db == nil {
		return domain.Federation{}, errDBUnavailable
	}
	now := r.now()
	if fed.LastModified.IsZero() {
		fed.LastModified = now
	}
	model, err := toModel(fed)
	if err != nil {
		return domain.Federation{}, err
	}
	model.CreatedAt = now
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Federation{}, fmt.Errorf("%w: federation with id %s already exists", domain.ErrConflict, fed.ID)
		}
		return domain.Federation{}, err
	}
	return fromModel(model)
}

func (r *FederationRepository) FindAll(ctx context.Context) ([]domain.Federation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []FederationModel
	if err := r.db.WithContext(ctx).Order("id asc").Find(&models).Error; err != nil {
		return nil, err
	}
	return fromModels(models)
}

func (r *FederationRepository) FindByID(ctx context.Context, id string) (*domain.Federation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model FederationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("federation %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	fed, err := fromModel(model)
	if err != nil {
		return nil, err
	}
	return &fed, nil
}

// Save replaces the stored federation, inserting it when absent. created_at is kept on update.
func (r *FederationRepository) Save(ctx context.Context, fed domain.Federation) (domain.Federation, error) {
	if r.db == nil {
		return domain.Federation{}, errDBUnavailable
	}
	now := r.now()
	fed.LastModified = now
	model, err := toModel(fed)
	if err != nil {
		return domain.Federation{}, err
	}
	model.CreatedAt = now
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "public", "information_model", "sla_constraints", "members", "open_invitations", "last_modified",
		}),
	}).Create(&model).Error
	if err != nil {
		return domain.Federation{}, err
	}
	return fromModel(model)
}

func (r *FederationRepository) DeleteByID(ctx context.Context, id string) ([]domain.Federation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []FederationModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&models).Error
	if err != nil {
		return nil, err
	}
	return fromModels(models)
}

// FindByMember relies on jsonb containment, served by the GIN index on members.
func (r *FederationRepository) FindByMember(ctx context.Context, platformID string) ([]domain.Federation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	probe, err := json.Marshal([]map[string]string{{"platformId": platformID}})
	if err != nil {
		return nil, err
	}
	var models []FederationModel
	if err := r.db.WithContext(ctx).
		Where("members @> ?::jsonb", string(probe)).
		Order("id asc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return fromModels(models)
}
