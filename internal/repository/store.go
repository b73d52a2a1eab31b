package repository

import (
	"context"

	"relgraph/internal/model"
)

// EdgeStore 关系边存储
// 所有写操作幂等：重复添加、删除不存在的边都视为成功。
// symmetrical=true 时两条方向的记录在同一事务内写入/删除。
type EdgeStore interface {
	// Exists symmetrical=false 只检查 from->to；为 true 时任一方向存在即可
	Exists(ctx context.Context, from, to, statusID uint, symmetrical bool) (bool, error)
	// ExistsAny 是否存在 froms 中任一用户指向 to 的边
	ExistsAny(ctx context.Context, froms []uint, to, statusID uint) (bool, error)
	Add(ctx context.Context, from, to, statusID uint, symmetrical bool) error
	Remove(ctx context.Context, from, to, statusID uint, symmetrical bool) error
	// EdgesFrom / EdgesTo 按创建时间倒序
	EdgesFrom(ctx context.Context, userID, statusID uint) ([]model.Relationship, error)
	EdgesTo(ctx context.Context, userID, statusID uint) ([]model.Relationship, error)
	DeleteByStatus(ctx context.Context, statusID uint) error
}

// StatusStore 关系类型存储（管理员维护，数据量小）
type StatusStore interface {
	List(ctx context.Context) ([]model.RelationshipStatus, error)
	Create(ctx context.Context, status *model.RelationshipStatus) error
	Update(ctx context.Context, status *model.RelationshipStatus) error
	Delete(ctx context.Context, id uint) error
}

// UserStore 用户目录（外部身份系统的只读视图）
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByIDs 按传入顺序返回存在的用户
	GetByIDs(ctx context.Context, ids []uint) ([]model.User, error)
}

// UserWriter 导入用户，供 relctl 与测试使用
type UserWriter interface {
	Create(ctx context.Context, user *model.User) error
}

// SocialAccountStore 第三方账号绑定
type SocialAccountStore interface {
	Get(ctx context.Context, userID uint, provider string) (*model.SocialAccount, bool, error)
	// Link 绑定或更新第三方用户名
	Link(ctx context.Context, userID uint, provider, externalUsername string) error
}

// ActivityStore 关系动态
type ActivityStore interface {
	Create(ctx context.Context, activity *model.Activity) error
}

// orderByIDs 将查询结果恢复为 ids 的顺序
func orderByIDs(ids []uint, users []model.User) []model.User {
	byID := make(map[uint]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered
}
