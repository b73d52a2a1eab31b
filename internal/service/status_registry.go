package service

import (
	"context"
	"regexp"
	"sync"

	"relgraph/config"
	"relgraph/internal/apperror"
	"relgraph/internal/model"
	"relgraph/internal/repository"
	"relgraph/pkg/logger"

	"go.uber.org/zap"
)

// Direction slug 命中的槽位
type Direction int

const (
	Forward     Direction = iota // from_slug
	Reverse                      // to_slug
	Symmetrical                  // symmetrical_slug
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case Symmetrical:
		return "symmetrical"
	default:
		return "unknown"
	}
}

// Resolution 解析结果
type Resolution struct {
	Status    model.RelationshipStatus
	Direction Direction
}

// Slug 命中的slug
func (r Resolution) Slug() string {
	switch r.Direction {
	case Reverse:
		return r.Status.ToSlug
	case Symmetrical:
		return r.Status.Symmetrical()
	default:
		return r.Status.FromSlug
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidSlug 小写字母、数字、下划线和连字符
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// StatusRegistry 关系类型注册表
// 全部类型常驻内存，按slug建索引；管理操作写库后整体重建索引
type StatusRegistry struct {
	store        repository.StatusStore
	edges        repository.EdgeStore
	defaultSlug  string
	blockingSlug string

	writeMu sync.Mutex // 串行化管理操作，保证slug唯一性校验与写入之间无竞争

	mu     sync.RWMutex
	bySlug map[string]Resolution
	byID   map[uint]model.RelationshipStatus
}

func NewStatusRegistry(store repository.StatusStore, edges repository.EdgeStore, cfg config.RelationshipsConfig) *StatusRegistry {
	return &StatusRegistry{
		store:        store,
		edges:        edges,
		defaultSlug:  cfg.DefaultStatus,
		blockingSlug: cfg.BlockingStatus,
		bySlug:       make(map[string]Resolution),
		byID:         make(map[uint]model.RelationshipStatus),
	}
}

// Reload 从存储重建slug索引
func (r *StatusRegistry) Reload(ctx context.Context) error {
	statuses, err := r.store.List(ctx)
	if err != nil {
		return err
	}

	bySlug := make(map[string]Resolution, len(statuses)*3)
	byID := make(map[uint]model.RelationshipStatus, len(statuses))
	for _, st := range statuses {
		byID[st.ID] = st
		bySlug[st.FromSlug] = Resolution{Status: st, Direction: Forward}
		bySlug[st.ToSlug] = Resolution{Status: st, Direction: Reverse}
		if sym := st.Symmetrical(); sym != "" {
			bySlug[sym] = Resolution{Status: st, Direction: Symmetrical}
		}
	}

	r.mu.Lock()
	r.bySlug = bySlug
	r.byID = byID
	r.mu.Unlock()
	return nil
}

// Resolve 按slug查找关系类型及方向
func (r *StatusRegistry) Resolve(slug string) (Resolution, error) {
	r.mu.RLock()
	res, ok := r.bySlug[slug]
	r.mu.RUnlock()
	if !ok {
		return Resolution{}, apperror.NotFound("relationship status %q", slug)
	}
	return res, nil
}

// ByID 按ID查找
func (r *StatusRegistry) ByID(id uint) (model.RelationshipStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.byID[id]
	return st, ok
}

// DefaultFollowing 未指定slug时使用的关系类型
func (r *StatusRegistry) DefaultFollowing() (model.RelationshipStatus, error) {
	res, err := r.Resolve(r.defaultSlug)
	if err != nil {
		return model.RelationshipStatus{}, err
	}
	return res.Status, nil
}

// Blocking 拉黑关系类型
func (r *StatusRegistry) Blocking() (model.RelationshipStatus, error) {
	res, err := r.Resolve(r.blockingSlug)
	if err != nil {
		return model.RelationshipStatus{}, err
	}
	return res.Status, nil
}

func (r *StatusRegistry) ListStatuses(ctx context.Context) ([]model.RelationshipStatus, error) {
	return r.store.List(ctx)
}

func (r *StatusRegistry) CreateStatus(ctx context.Context, status *model.RelationshipStatus) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.validate(status, 0); err != nil {
		return err
	}
	if err := r.store.Create(ctx, status); err != nil {
		return err
	}
	logger.Info("关系类型已创建", zap.Uint("id", status.ID), zap.Strings("slugs", status.Slugs()))
	return r.Reload(ctx)
}

func (r *StatusRegistry) UpdateStatus(ctx context.Context, status *model.RelationshipStatus) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if _, ok := r.ByID(status.ID); !ok {
		return apperror.NotFound("relationship status %d", status.ID)
	}
	if err := r.validate(status, status.ID); err != nil {
		return err
	}
	if err := r.store.Update(ctx, status); err != nil {
		return err
	}
	logger.Info("关系类型已更新", zap.Uint("id", status.ID), zap.Strings("slugs", status.Slugs()))
	return r.Reload(ctx)
}

// DeleteStatus 先删除该类型的全部边，再删除类型本身
func (r *StatusRegistry) DeleteStatus(ctx context.Context, id uint) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if _, ok := r.ByID(id); !ok {
		return apperror.NotFound("relationship status %d", id)
	}
	if err := r.edges.DeleteByStatus(ctx, id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("关系类型已删除", zap.Uint("id", id))
	return r.Reload(ctx)
}

// validate 语法校验 + 三个槽位全局唯一
func (r *StatusRegistry) validate(status *model.RelationshipStatus, selfID uint) error {
	if status.Name == "" {
		return apperror.Validation("name is required")
	}
	if status.SymmetricalSlug != nil && *status.SymmetricalSlug == "" {
		status.SymmetricalSlug = nil
	}

	slugs := status.Slugs()
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !slugPattern.MatchString(slug) {
			return apperror.Validation("malformed slug %q", slug)
		}
		if seen[slug] {
			return apperror.Validation("slug %q used twice in one status", slug)
		}
		seen[slug] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, slug := range slugs {
		if owner, ok := r.bySlug[slug]; ok && owner.Status.ID != selfID {
			return apperror.Validation("slug %q already used by status %q", slug, owner.Status.Name)
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

// DefaultStatuses 初始关系类型
func DefaultStatuses() []model.RelationshipStatus {
	return []model.RelationshipStatus{
		{
			Name:            "Following",
			Verb:            "follow",
			FromSlug:        "following",
			ToSlug:          "followers",
			SymmetricalSlug: strPtr("friends"),
		},
		{
			Name:          "Blocking",
			Verb:          "block",
			FromSlug:      "blocking",
			ToSlug:        "blockers",
			LoginRequired: true,
			Private:       true,
		},
	}
}

// SeedDefaults 幂等写入默认关系类型：from_slug 已存在的跳过
func (r *StatusRegistry) SeedDefaults(ctx context.Context) error {
	if err := r.Reload(ctx); err != nil {
		return err
	}
	for _, st := range DefaultStatuses() {
		if _, err := r.Resolve(st.FromSlug); err == nil {
			continue
		}
		st := st
		if err := r.CreateStatus(ctx, &st); err != nil {
			return err
		}
	}
	return nil
}
