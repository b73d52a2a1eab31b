package model

import (
	"time"

	"github.com/google/uuid"
)

// 动态动作
const (
	ActivityAdd    = "add"
	ActivityRemove = "remove"
)

// Activity 关系变更动态（尽力而为的审计记录，不参与事务）
type Activity struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ActorID   uint      `gorm:"not null;index;comment:操作者" json:"actor_id"`
	TargetID  uint      `gorm:"not null;index;comment:目标用户" json:"target_id"`
	StatusID  uint      `gorm:"not null;comment:关系类型ID" json:"status_id"`
	Verb      string    `gorm:"type:varchar(100);comment:动作词" json:"verb"`
	Action    string    `gorm:"type:varchar(16);not null;comment:add/remove" json:"action"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Activity) TableName() string { return "relationship_activity" }
