package repository

import (
	"context"
	"errors"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %d", id)
		}
		return nil, apperror.Storage("get user", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %q", username)
		}
		return nil, apperror.Storage("get user", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	if err := r.orm.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperror.Storage("get users", err)
	}
	return orderByIDs(ids, users), nil
}

// Create 仅供工具与测试导入用户
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return apperror.Storage("create user", r.orm.WithContext(ctx).Create(user).Error)
}
