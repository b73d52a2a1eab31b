package repository

import (
	"context"
	"errors"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"gorm.io/gorm"
)

// StatusRepository 关系类型存储
type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) List(ctx context.Context) ([]model.RelationshipStatus, error) {
	var statuses []model.RelationshipStatus
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, apperror.Storage("list relationship statuses", err)
	}
	return statuses, nil
}

func (r *StatusRepository) Create(ctx context.Context, status *model.RelationshipStatus) error {
	err := r.db.WithContext(ctx).Create(status).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Validation("slug already in use")
	}
	return apperror.Storage("create relationship status", err)
}

func (r *StatusRepository) Update(ctx context.Context, status *model.RelationshipStatus) error {
	res := r.db.WithContext(ctx).Model(&model.RelationshipStatus{ID: status.ID}).
		Select("Name", "Verb", "FromSlug", "ToSlug", "SymmetricalSlug", "LoginRequired", "Private").
		Updates(status)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return apperror.Validation("slug already in use")
	}
	if res.Error != nil {
		return apperror.Storage("update relationship status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("relationship status %d", status.ID)
	}
	return nil
}

func (r *StatusRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.RelationshipStatus{}, id)
	if res.Error != nil {
		return apperror.Storage("delete relationship status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("relationship status %d", id)
	}
	return nil
}
