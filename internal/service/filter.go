package service

import (
	"context"
)

// Viewer 当前访问者，ID 为 0 表示匿名
type Viewer struct {
	ID uint
}

func Anonymous() Viewer { return Viewer{} }

func (v Viewer) IsAuthenticated() bool { return v.ID != 0 }

func (v Viewer) IsAnonymous() bool { return v.ID == 0 }

// HasUserField 可按关联用户过滤的记录
type HasUserField interface {
	RelatedUserID() (uint, bool)
}

type userSet map[uint]struct{}

func newUserSet(ids []uint) userSet {
	set := make(userSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s userSet) has(id uint) bool {
	_, ok := s[id]
	return ok
}

// userIDs 取出每个元素的关联用户；任一元素不支持 HasUserField 时 ok=false
func userIDs[T any](items []T) ([]uint, []bool, bool) {
	ids := make([]uint, len(items))
	present := make([]bool, len(items))
	for i, item := range items {
		h, ok := any(item).(HasUserField)
		if !ok {
			return nil, nil, false
		}
		ids[i], present[i] = h.RelatedUserID()
	}
	return ids, present, true
}

// PositiveFilter 只保留关联用户在 members 中的元素
// 匿名访问者或无法确定关联用户时返回空
func PositiveFilter[T any](viewer Viewer, items []T, members []uint) []T {
	out := []T{}
	if viewer.IsAnonymous() {
		return out
	}
	ids, present, ok := userIDs(items)
	if !ok {
		return out
	}
	set := newUserSet(members)
	for i, item := range items {
		if present[i] && set.has(ids[i]) {
			out = append(out, item)
		}
	}
	return out
}

// NegativeFilter 去掉关联用户在 members 中的元素
// 匿名访问者或无法确定关联用户时原样返回
func NegativeFilter[T any](viewer Viewer, items []T, members []uint) []T {
	if viewer.IsAnonymous() {
		return items
	}
	ids, present, ok := userIDs(items)
	if !ok {
		return items
	}
	set := newUserSet(members)
	out := make([]T, 0, len(items))
	for i, item := range items {
		if present[i] && set.has(ids[i]) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FriendContent 只保留访问者好友（互相关注）的内容
func FriendContent[T any](ctx context.Context, s *RelationshipService, viewer Viewer, items []T) ([]T, error) {
	return positiveBy(ctx, viewer, items, s.FriendIDs)
}

// FollowingContent 只保留访问者关注的人的内容
func FollowingContent[T any](ctx context.Context, s *RelationshipService, viewer Viewer, items []T) ([]T, error) {
	return positiveBy(ctx, viewer, items, s.FollowingIDs)
}

// FollowersContent 只保留访问者粉丝的内容
func FollowersContent[T any](ctx context.Context, s *RelationshipService, viewer Viewer, items []T) ([]T, error) {
	return positiveBy(ctx, viewer, items, s.FollowerIDs)
}

// UnblockedContent 去掉访问者拉黑的人的内容
func UnblockedContent[T any](ctx context.Context, s *RelationshipService, viewer Viewer, items []T) ([]T, error) {
	if viewer.IsAnonymous() {
		return items, nil
	}
	blocked, err := s.BlockingIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	return NegativeFilter(viewer, items, blocked), nil
}

func positiveBy[T any](ctx context.Context, viewer Viewer, items []T, members func(context.Context, uint) ([]uint, error)) ([]T, error) {
	if viewer.IsAnonymous() {
		return []T{}, nil
	}
	ids, err := members(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	return PositiveFilter(viewer, items, ids), nil
}
