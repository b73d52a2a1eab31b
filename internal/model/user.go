package model

import "time"

// User 用户（身份由外部系统维护，这里只保留关系图需要的字段）
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名" json:"username"`
	Nickname  string    `gorm:"type:varchar(64);comment:昵称" json:"nickname"`
	Avatar    string    `gorm:"type:varchar(255);comment:头像URL" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 全局使用单数表名
func (User) TableName() string { return "user" }

// RelatedUserID 用户本身即关联用户，使 []User 可直接参与内容过滤
func (u User) RelatedUserID() (uint, bool) {
	return u.ID, u.ID != 0
}
