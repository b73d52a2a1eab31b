package repository

import (
	"context"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"gorm.io/gorm"
)

// ActivityRepository 关系动态存储
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	return apperror.Storage("create activity", r.db.WithContext(ctx).Create(activity).Error)
}

// ListByActor 最近的动态
func (r *ActivityRepository) ListByActor(ctx context.Context, actorID uint, limit int) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, apperror.Storage("list activities", err)
	}
	return activities, nil
}
