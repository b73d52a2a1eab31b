package model

import "time"

// SocialAccount 用户与第三方社交网络账号的绑定
type SocialAccount struct {
	ID               uint      `gorm:"primaryKey"`
	UserID           uint      `gorm:"not null;uniqueIndex:uidx_social_user_provider,priority:1;comment:用户ID"`
	Provider         string    `gorm:"type:varchar(32);not null;uniqueIndex:uidx_social_user_provider,priority:2;comment:第三方名称"`
	ExternalUsername string    `gorm:"type:varchar(128);not null;comment:第三方用户名"`
	CreatedAt        time.Time `gorm:"comment:创建时间"`
	UpdatedAt        time.Time `gorm:"comment:更新时间"`
}

func (SocialAccount) TableName() string { return "social_account" }
