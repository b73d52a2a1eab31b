package service

import (
	"context"
	"fmt"
	"time"

	"relgraph/internal/apperror"
	"relgraph/internal/model"
	"relgraph/internal/repository"
	"relgraph/pkg/cache"
	"relgraph/pkg/logger"
	"relgraph/pkg/metrics"

	"go.uber.org/zap"
)

const defaultSubsetChunkSize = 20

// RelationshipService 关系查询与变更
type RelationshipService struct {
	registry  *StatusRegistry
	edges     repository.EdgeStore
	users     repository.UserStore
	hooks     *Hooks
	listCache cache.Cache
	chunkSize int
	now       func() time.Time
}

// Option 可选配置
type Option func(*RelationshipService)

// WithListCache 首页分块缓存
func WithListCache(c cache.Cache) Option {
	return func(s *RelationshipService) { s.listCache = c }
}

// WithChunkSize 首页固定分块大小，非正数时保留默认值
func WithChunkSize(n int) Option {
	return func(s *RelationshipService) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithHooks 替换默认的回调链，传 nil 时保留默认
func WithHooks(h *Hooks) Option {
	return func(s *RelationshipService) {
		if h != nil {
			s.hooks = h
		}
	}
}

func NewRelationshipService(registry *StatusRegistry, edges repository.EdgeStore, users repository.UserStore, opts ...Option) *RelationshipService {
	s := &RelationshipService{
		registry:  registry,
		edges:     edges,
		users:     users,
		hooks:     NewHooks(),
		chunkSize: defaultSubsetChunkSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RelationshipService) Registry() *StatusRegistry { return s.registry }

func (s *RelationshipService) Hooks() *Hooks { return s.hooks }

// ChunkSize 首页固定分块大小
func (s *RelationshipService) ChunkSize() int { return s.chunkSize }

// ResolveStatus 按slug解析关系类型
func (s *RelationshipService) ResolveStatus(slug string) (Resolution, error) {
	return s.registry.Resolve(slug)
}

// Exists from 与 to 之间是否存在 slug 所指的关系
// to_slug 会反转方向，symmetrical_slug 任一方向存在即可
func (s *RelationshipService) Exists(ctx context.Context, from, to uint, slug string) (bool, error) {
	res, err := s.registry.Resolve(slug)
	if err != nil {
		return false, err
	}
	if from == 0 || to == 0 {
		return false, nil
	}
	return s.exists(ctx, from, to, res)
}

func (s *RelationshipService) exists(ctx context.Context, from, to uint, res Resolution) (bool, error) {
	switch res.Direction {
	case Reverse:
		return s.edges.Exists(ctx, to, from, res.Status.ID, false)
	case Symmetrical:
		return s.edges.Exists(ctx, from, to, res.Status.ID, true)
	default:
		return s.edges.Exists(ctx, from, to, res.Status.ID, false)
	}
}

// relatedIDs 按方向取关联用户，最新的在前
// 双向取 “我指向的” 与 “指向我的” 的交集
func (s *RelationshipService) relatedIDs(ctx context.Context, userID uint, res Resolution) ([]uint, error) {
	switch res.Direction {
	case Reverse:
		rels, err := s.edges.EdgesTo(ctx, userID, res.Status.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(rels))
		for i, r := range rels {
			ids[i] = r.FromUserID
		}
		return ids, nil
	case Symmetrical:
		out, err := s.edges.EdgesFrom(ctx, userID, res.Status.ID)
		if err != nil {
			return nil, err
		}
		in, err := s.edges.EdgesTo(ctx, userID, res.Status.ID)
		if err != nil {
			return nil, err
		}
		incoming := make(userSet, len(in))
		for _, r := range in {
			incoming[r.FromUserID] = struct{}{}
		}
		ids := make([]uint, 0, len(out))
		for _, r := range out {
			if incoming.has(r.ToUserID) {
				ids = append(ids, r.ToUserID)
			}
		}
		return ids, nil
	default:
		rels, err := s.edges.EdgesFrom(ctx, userID, res.Status.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(rels))
		for i, r := range rels {
			ids[i] = r.ToUserID
		}
		return ids, nil
	}
}

func (s *RelationshipService) defaultResolution(dir Direction) (Resolution, error) {
	st, err := s.registry.DefaultFollowing()
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Status: st, Direction: dir}, nil
}

// FollowerIDs 关注 userID 的人
func (s *RelationshipService) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	res, err := s.defaultResolution(Reverse)
	if err != nil {
		return nil, err
	}
	return s.relatedIDs(ctx, userID, res)
}

// FollowingIDs userID 关注的人
func (s *RelationshipService) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	res, err := s.defaultResolution(Forward)
	if err != nil {
		return nil, err
	}
	return s.relatedIDs(ctx, userID, res)
}

// FriendIDs 与 userID 互相关注的人
func (s *RelationshipService) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	res, err := s.defaultResolution(Symmetrical)
	if err != nil {
		return nil, err
	}
	return s.relatedIDs(ctx, userID, res)
}

// BlockingIDs userID 拉黑的人
func (s *RelationshipService) BlockingIDs(ctx context.Context, userID uint) ([]uint, error) {
	st, err := s.registry.Blocking()
	if err != nil {
		return nil, err
	}
	return s.relatedIDs(ctx, userID, Resolution{Status: st, Direction: Forward})
}

func (s *RelationshipService) loadUsers(ctx context.Context, userID uint, ids func(context.Context, uint) ([]uint, error)) ([]model.User, error) {
	related, err := ids(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.users.GetByIDs(ctx, related)
}

func (s *RelationshipService) Followers(ctx context.Context, userID uint) ([]model.User, error) {
	return s.loadUsers(ctx, userID, s.FollowerIDs)
}

func (s *RelationshipService) Following(ctx context.Context, userID uint) ([]model.User, error) {
	return s.loadUsers(ctx, userID, s.FollowingIDs)
}

func (s *RelationshipService) Friends(ctx context.Context, userID uint) ([]model.User, error) {
	return s.loadUsers(ctx, userID, s.FriendIDs)
}

func (s *RelationshipService) Blocking(ctx context.Context, userID uint) ([]model.User, error) {
	return s.loadUsers(ctx, userID, s.BlockingIDs)
}

// ListRelationships 访问者查看 userID 在 slug 下的关系列表
// slug 为空时使用默认关系类型的正向列表
func (s *RelationshipService) ListRelationships(ctx context.Context, viewer Viewer, userID uint, slug string) ([]model.User, error) {
	res, err := s.resolveForList(slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(viewer, userID, res.Status); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.loadUsers(ctx, userID, func(ctx context.Context, id uint) ([]uint, error) {
		return s.relatedIDs(ctx, id, res)
	})
}

func (s *RelationshipService) resolveForList(slug string) (Resolution, error) {
	if slug == "" {
		return s.defaultResolution(Forward)
	}
	return s.registry.Resolve(slug)
}

// checkVisible login_required 要求登录，private 只允许本人查看
func (s *RelationshipService) checkVisible(viewer Viewer, ownerID uint, st model.RelationshipStatus) error {
	if st.LoginRequired && viewer.IsAnonymous() {
		return apperror.ErrLoginRequired
	}
	if st.Private && viewer.ID != ownerID {
		return apperror.NotFound("relationship list")
	}
	return nil
}

// Add actor 对 target 建立 slug 所指的关系，重复添加视为成功
func (s *RelationshipService) Add(ctx context.Context, actorID, targetID uint, slug string) error {
	return s.mutate(ctx, actorID, targetID, slug, model.ActivityAdd)
}

// Remove 删除关系，不存在时视为成功
func (s *RelationshipService) Remove(ctx context.Context, actorID, targetID uint, slug string) error {
	return s.mutate(ctx, actorID, targetID, slug, model.ActivityRemove)
}

func (s *RelationshipService) mutate(ctx context.Context, actorID, targetID uint, slug, action string) error {
	res, err := s.registry.Resolve(slug)
	if err != nil {
		return err
	}
	if actorID == 0 {
		return apperror.ErrLoginRequired
	}
	// 反向slug只用于查询，变更时按正向处理：actor -> target
	if res.Direction == Reverse {
		res.Direction = Forward
	}
	if actorID == targetID {
		return apperror.Validation("cannot relate a user to themselves")
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}

	ev := Event{
		ActorID:   actorID,
		TargetID:  targetID,
		Status:    res.Status,
		Direction: res.Direction,
		Action:    action,
		At:        s.now(),
	}
	if err := s.hooks.runBefore(ctx, ev); err != nil {
		return err
	}

	symmetrical := res.Direction == Symmetrical
	if action == model.ActivityAdd {
		err = s.edges.Add(ctx, actorID, targetID, res.Status.ID, symmetrical)
	} else {
		err = s.edges.Remove(ctx, actorID, targetID, res.Status.ID, symmetrical)
	}
	if err != nil {
		return err
	}

	logger.Debug("关系已变更",
		zap.Uint("actor_id", actorID),
		zap.Uint("target_id", targetID),
		zap.String("status", slug),
		zap.String("action", action),
	)
	s.hooks.runAfter(ctx, ev)
	return nil
}

// FollowersSubset 关注者分页，start 为 0 时返回固定大小的首块并缓存
func (s *RelationshipService) FollowersSubset(ctx context.Context, userID uint, start, end int) ([]model.User, error) {
	res, err := s.defaultResolution(Reverse)
	if err != nil {
		return nil, err
	}
	return s.subset(ctx, userID, res, start, end)
}

// FollowingSubset 关注列表分页
func (s *RelationshipService) FollowingSubset(ctx context.Context, userID uint, start, end int) ([]model.User, error) {
	res, err := s.defaultResolution(Forward)
	if err != nil {
		return nil, err
	}
	return s.subset(ctx, userID, res, start, end)
}

// SubsetBySlug 任意关系类型的分页，供 HTTP 层使用
func (s *RelationshipService) SubsetBySlug(ctx context.Context, viewer Viewer, userID uint, slug string, start, end int) ([]model.User, error) {
	res, err := s.resolveForList(slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(viewer, userID, res.Status); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.subset(ctx, userID, res, start, end)
}

func (s *RelationshipService) subset(ctx context.Context, userID uint, res Resolution, start, end int) ([]model.User, error) {
	if start != 0 {
		ids, err := s.relatedIDs(ctx, userID, res)
		if err != nil {
			return nil, err
		}
		return s.users.GetByIDs(ctx, Subset(ids, start, end))
	}

	key := listCacheKey(res, userID)
	if s.listCache != nil {
		ids, ok, err := cache.GetJSON[[]uint](ctx, s.listCache, key)
		if err != nil {
			logger.Warn("读取列表缓存失败", zap.String("key", key), zap.Error(err))
		} else if ok {
			return s.users.GetByIDs(ctx, ids)
		}
	}

	ids, err := s.relatedIDs(ctx, userID, res)
	if err != nil {
		return nil, err
	}
	chunk := Subset(ids, 0, s.chunkSize)
	if s.listCache != nil {
		if err := cache.SetJSON(ctx, s.listCache, key, chunk); err != nil {
			logger.Warn("写入列表缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return s.users.GetByIDs(ctx, chunk)
}

func listCacheKey(res Resolution, userID uint) string {
	return fmt.Sprintf("%d:%s:%d", res.Status.ID, res.Direction, userID)
}

// ListCacheInvalidator 变更后清除双方所有方向的首块缓存
func ListCacheInvalidator(c cache.Cache) Hook {
	return func(ctx context.Context, ev Event) error {
		keys := make([]string, 0, 6)
		for _, uid := range []uint{ev.ActorID, ev.TargetID} {
			for _, dir := range []Direction{Forward, Reverse, Symmetrical} {
				keys = append(keys, listCacheKey(Resolution{Status: ev.Status, Direction: dir}, uid))
			}
		}
		return c.Delete(ctx, keys...)
	}
}

// MetricsHook 统计关系变更次数
func MetricsHook() Hook {
	return func(_ context.Context, ev Event) error {
		metrics.RelationshipMutations.WithLabelValues(ev.Status.FromSlug, ev.Action).Inc()
		return nil
	}
}
