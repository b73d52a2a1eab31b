package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"relgraph/internal/apperror"
	"relgraph/internal/model"
)

type edgeKey struct {
	from, to, status uint
}

// MemoryEdgeStore 进程内关系边存储，用于测试与单机部署（edgeBackend: memory）
// 单把读写锁保证对称关系的两条记录对读者同时可见
type MemoryEdgeStore struct {
	mu    sync.RWMutex
	seq   uint
	edges map[edgeKey]model.Relationship
	now   func() time.Time
}

func NewMemoryEdgeStore() *MemoryEdgeStore {
	return &MemoryEdgeStore{
		edges: make(map[edgeKey]model.Relationship),
		now:   time.Now,
	}
}

func (s *MemoryEdgeStore) Exists(_ context.Context, from, to, statusID uint, symmetrical bool) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.edges[edgeKey{from, to, statusID}]; ok {
		return true, nil
	}
	if symmetrical {
		_, ok := s.edges[edgeKey{to, from, statusID}]
		return ok, nil
	}
	return false, nil
}

func (s *MemoryEdgeStore) ExistsAny(_ context.Context, froms []uint, to, statusID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, from := range froms {
		if _, ok := s.edges[edgeKey{from, to, statusID}]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryEdgeStore) Add(_ context.Context, from, to, statusID uint, symmetrical bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insert(from, to, statusID)
	if symmetrical {
		s.insert(to, from, statusID)
	}
	return nil
}

func (s *MemoryEdgeStore) insert(from, to, statusID uint) {
	key := edgeKey{from, to, statusID}
	if _, ok := s.edges[key]; ok {
		return
	}
	s.seq++
	now := s.now()
	s.edges[key] = model.Relationship{
		ID:         s.seq,
		FromUserID: from,
		ToUserID:   to,
		StatusID:   statusID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *MemoryEdgeStore) Remove(_ context.Context, from, to, statusID uint, symmetrical bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.edges, edgeKey{from, to, statusID})
	if symmetrical {
		delete(s.edges, edgeKey{to, from, statusID})
	}
	return nil
}

func (s *MemoryEdgeStore) EdgesFrom(_ context.Context, userID, statusID uint) ([]model.Relationship, error) {
	return s.collect(func(r model.Relationship) bool {
		return r.FromUserID == userID && r.StatusID == statusID
	}), nil
}

func (s *MemoryEdgeStore) EdgesTo(_ context.Context, userID, statusID uint) ([]model.Relationship, error) {
	return s.collect(func(r model.Relationship) bool {
		return r.ToUserID == userID && r.StatusID == statusID
	}), nil
}

func (s *MemoryEdgeStore) collect(match func(model.Relationship) bool) []model.Relationship {
	s.mu.RLock()
	rels := make([]model.Relationship, 0)
	for _, r := range s.edges {
		if match(r) {
			rels = append(rels, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(rels, func(i, j int) bool {
		if !rels[i].CreatedAt.Equal(rels[j].CreatedAt) {
			return rels[i].CreatedAt.After(rels[j].CreatedAt)
		}
		return rels[i].ID > rels[j].ID
	})
	return rels
}

func (s *MemoryEdgeStore) DeleteByStatus(_ context.Context, statusID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.edges {
		if key.status == statusID {
			delete(s.edges, key)
		}
	}
	return nil
}

// Len 当前存储的边数
func (s *MemoryEdgeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// MemoryStatusStore 进程内关系类型存储
type MemoryStatusStore struct {
	mu       sync.RWMutex
	seq      uint
	statuses map[uint]model.RelationshipStatus
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[uint]model.RelationshipStatus)}
}

func (s *MemoryStatusStore) List(_ context.Context) ([]model.RelationshipStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.RelationshipStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		list = append(list, st)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *MemoryStatusStore) Create(_ context.Context, status *model.RelationshipStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTaken(0, status) {
		return apperror.Validation("slug already in use")
	}
	s.seq++
	status.ID = s.seq
	status.CreatedAt = time.Now()
	status.UpdatedAt = status.CreatedAt
	s.statuses[status.ID] = *status
	return nil
}

func (s *MemoryStatusStore) Update(_ context.Context, status *model.RelationshipStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.statuses[status.ID]
	if !ok {
		return apperror.NotFound("relationship status %d", status.ID)
	}
	if s.slugTaken(status.ID, status) {
		return apperror.Validation("slug already in use")
	}
	status.CreatedAt = old.CreatedAt
	status.UpdatedAt = time.Now()
	s.statuses[status.ID] = *status
	return nil
}

func (s *MemoryStatusStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.statuses[id]; !ok {
		return apperror.NotFound("relationship status %d", id)
	}
	delete(s.statuses, id)
	return nil
}

// slugTaken 与SQL唯一索引一致：同一列上的slug不能重复
func (s *MemoryStatusStore) slugTaken(exceptID uint, status *model.RelationshipStatus) bool {
	for id, st := range s.statuses {
		if id == exceptID {
			continue
		}
		if st.FromSlug == status.FromSlug || st.ToSlug == status.ToSlug {
			return true
		}
		if st.SymmetricalSlug != nil && status.SymmetricalSlug != nil &&
			*st.SymmetricalSlug == *status.SymmetricalSlug {
			return true
		}
	}
	return false
}

// MemoryUserStore 进程内用户目录
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uint]model.User
}

func NewMemoryUserStore(users ...model.User) *MemoryUserStore {
	s := &MemoryUserStore{users: make(map[uint]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *MemoryUserStore) Put(u model.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	s.Put(*user)
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user %d", id)
	}
	return &u, nil
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user %q", username)
}

func (s *MemoryUserStore) GetByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// MemorySocialAccountStore 进程内第三方账号绑定
type MemorySocialAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]model.SocialAccount
}

func NewMemorySocialAccountStore() *MemorySocialAccountStore {
	return &MemorySocialAccountStore{accounts: make(map[string]model.SocialAccount)}
}

func socialKey(userID uint, provider string) string {
	return provider + ":" + strconv.FormatUint(uint64(userID), 10)
}

func (s *MemorySocialAccountStore) Link(_ context.Context, userID uint, provider, externalUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[socialKey(userID, provider)] = model.SocialAccount{
		UserID:           userID,
		Provider:         provider,
		ExternalUsername: externalUsername,
	}
	return nil
}

func (s *MemorySocialAccountStore) Get(_ context.Context, userID uint, provider string) (*model.SocialAccount, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[socialKey(userID, provider)]
	if !ok {
		return nil, false, nil
	}
	return &acc, true, nil
}

// MemoryActivityStore 进程内动态存储
type MemoryActivityStore struct {
	mu         sync.Mutex
	activities []model.Activity
}

func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{}
}

func (s *MemoryActivityStore) Create(_ context.Context, activity *model.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, *activity)
	return nil
}

// All 返回全部动态的副本
func (s *MemoryActivityStore) All() []model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Activity(nil), s.activities...)
}
