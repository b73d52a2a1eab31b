package repository

import (
	"context"
	"errors"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"gorm.io/gorm"
)

// SocialAccountRepository 第三方账号绑定存储
type SocialAccountRepository struct {
	db *gorm.DB
}

func NewSocialAccountRepository(db *gorm.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

// Get 未绑定时返回 found=false
func (r *SocialAccountRepository) Get(ctx context.Context, userID uint, provider string) (*model.SocialAccount, bool, error) {
	var acc model.SocialAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperror.Storage("get social account", err)
	}
	return &acc, true, nil
}

// Link 绑定或更新第三方用户名
func (r *SocialAccountRepository) Link(ctx context.Context, userID uint, provider, externalUsername string) error {
	acc := model.SocialAccount{UserID: userID, Provider: provider, ExternalUsername: externalUsername}
	err := r.db.WithContext(ctx).
		Where(model.SocialAccount{UserID: userID, Provider: provider}).
		Assign(model.SocialAccount{ExternalUsername: externalUsername}).
		FirstOrCreate(&acc).Error
	return apperror.Storage("link social account", err)
}
