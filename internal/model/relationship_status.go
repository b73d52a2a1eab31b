package model

import "time"

// RelationshipStatus 关系类型（关注、拉黑等）
// FromSlug: 正向（following），ToSlug: 反向（followers），
// SymmetricalSlug: 双向（friends），可为空
// 三个slug在所有类型的所有槽位中全局唯一
type RelationshipStatus struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(100);not null;comment:显示名称" json:"name"`
	Verb            string    `gorm:"type:varchar(100);comment:动作词（用于动态记录）" json:"verb"`
	FromSlug        string    `gorm:"type:varchar(100);not null;uniqueIndex;comment:正向slug" json:"from_slug"`
	ToSlug          string    `gorm:"type:varchar(100);not null;uniqueIndex;comment:反向slug" json:"to_slug"`
	SymmetricalSlug *string   `gorm:"type:varchar(100);uniqueIndex;comment:双向slug" json:"symmetrical_slug,omitempty"`
	LoginRequired   bool      `gorm:"default:false;comment:查看列表是否需要登录" json:"login_required"`
	Private         bool      `gorm:"default:false;comment:仅本人可见" json:"private"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (RelationshipStatus) TableName() string { return "relationship_status" }

// Symmetrical 返回双向slug，未设置时为空字符串
func (s *RelationshipStatus) Symmetrical() string {
	if s.SymmetricalSlug == nil {
		return ""
	}
	return *s.SymmetricalSlug
}

// Slugs 返回该类型占用的全部slug
func (s *RelationshipStatus) Slugs() []string {
	slugs := []string{s.FromSlug, s.ToSlug}
	if sym := s.Symmetrical(); sym != "" {
		slugs = append(slugs, sym)
	}
	return slugs
}
