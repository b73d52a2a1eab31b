package model

import "time"

// Relationship 一条有向关系边 FromUserID -> ToUserID
// 唯一约束：(from_user_id, to_user_id, status_id)
// 对称关系以两条方向相反、StatusID 相同的记录保存
// 删除为物理删除，不使用软删除
type Relationship struct {
	ID         uint      `gorm:"primaryKey"`
	FromUserID uint      `gorm:"not null;uniqueIndex:uidx_rel_from_to_status,priority:1;index:idx_rel_from_status,priority:1;comment:发起方用户ID"`
	ToUserID   uint      `gorm:"not null;uniqueIndex:uidx_rel_from_to_status,priority:2;index:idx_rel_to_status,priority:1;comment:目标用户ID"`
	StatusID   uint      `gorm:"not null;uniqueIndex:uidx_rel_from_to_status,priority:3;index:idx_rel_from_status,priority:2;index:idx_rel_to_status,priority:2;comment:关系类型ID"`
	CreatedAt  time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

func (Relationship) TableName() string { return "relationship" }
