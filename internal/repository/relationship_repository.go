package repository

import (
	"context"
	"errors"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipRepository 基于 GORM 的关系边存储
type RelationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository 创建RelationshipRepository实例
func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// pairScope 单向或双向匹配 from/to
func pairScope(from, to uint, symmetrical bool) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if symmetrical {
			return q.Where("((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))",
				from, to, to, from)
		}
		return q.Where("from_user_id = ? AND to_user_id = ?", from, to)
	}
}

// Exists 检查关系是否存在
func (r *RelationshipRepository) Exists(ctx context.Context, from, to, statusID uint, symmetrical bool) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Relationship{}).
		Where("status_id = ?", statusID).
		Scopes(pairScope(from, to, symmetrical)).
		Count(&count).Error
	if err != nil {
		return false, apperror.Storage("check relationship", err)
	}
	return count > 0, nil
}

// ExistsAny 二度关系查询：froms 中是否有人指向 to
func (r *RelationshipRepository) ExistsAny(ctx context.Context, froms []uint, to, statusID uint) (bool, error) {
	if len(froms) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Relationship{}).
		Where("from_user_id IN ? AND to_user_id = ? AND status_id = ?", froms, to, statusID).
		Count(&count).Error
	if err != nil {
		return false, apperror.Storage("check second degree relationship", err)
	}
	return count > 0, nil
}

// Add 添加关系（幂等），对称关系两条记录同一事务写入
func (r *RelationshipRepository) Add(ctx context.Context, from, to, statusID uint, symmetrical bool) error {
	rows := []model.Relationship{{FromUserID: from, ToUserID: to, StatusID: statusID}}
	if symmetrical && from != to {
		rows = append(rows, model.Relationship{FromUserID: to, ToUserID: from, StatusID: statusID})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 并发插入同一条边时以唯一约束兜底，冲突即视为已存在
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return apperror.Storage("add relationship", err)
}

// Remove 删除关系（幂等，物理删除）
func (r *RelationshipRepository) Remove(ctx context.Context, from, to, statusID uint, symmetrical bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("status_id = ?", statusID).
			Scopes(pairScope(from, to, symmetrical)).
			Delete(&model.Relationship{}).Error
	})
	return apperror.Storage("remove relationship", err)
}

// EdgesFrom userID 发出的边，最新的在前
func (r *RelationshipRepository) EdgesFrom(ctx context.Context, userID, statusID uint) ([]model.Relationship, error) {
	var rels []model.Relationship
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND status_id = ?", userID, statusID).
		Order("created_at DESC").Order("id DESC").
		Find(&rels).Error
	if err != nil {
		return nil, apperror.Storage("list relationships from user", err)
	}
	return rels, nil
}

// EdgesTo 指向 userID 的边，最新的在前
func (r *RelationshipRepository) EdgesTo(ctx context.Context, userID, statusID uint) ([]model.Relationship, error) {
	var rels []model.Relationship
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND status_id = ?", userID, statusID).
		Order("created_at DESC").Order("id DESC").
		Find(&rels).Error
	if err != nil {
		return nil, apperror.Storage("list relationships to user", err)
	}
	return rels, nil
}

// DeleteByStatus 删除某关系类型下的全部边
func (r *RelationshipRepository) DeleteByStatus(ctx context.Context, statusID uint) error {
	err := r.db.WithContext(ctx).Where("status_id = ?", statusID).Delete(&model.Relationship{}).Error
	return apperror.Storage("delete relationships by status", err)
}
