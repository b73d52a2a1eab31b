package service

import (
	"context"
	"testing"

	"relgraph/config"
	"relgraph/internal/model"
	"relgraph/internal/repository"
	"relgraph/pkg/cache"

	"github.com/stretchr/testify/require"
)

const (
	alice uint = iota + 1
	bob
	carol
	dave
	erin
)

type testEnv struct {
	edges     *repository.MemoryEdgeStore
	statuses  *repository.MemoryStatusStore
	users     *repository.MemoryUserStore
	registry  *StatusRegistry
	listCache *cache.MemoryCache
	svc       *RelationshipService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		edges:     repository.NewMemoryEdgeStore(),
		statuses:  repository.NewMemoryStatusStore(),
		listCache: cache.NewMemoryCache(128, 0),
		users: repository.NewMemoryUserStore(
			model.User{ID: alice, Username: "alice"},
			model.User{ID: bob, Username: "bob"},
			model.User{ID: carol, Username: "carol"},
			model.User{ID: dave, Username: "dave"},
			model.User{ID: erin, Username: "erin"},
		),
	}
	env.registry = NewStatusRegistry(env.statuses, env.edges, config.RelationshipsConfig{
		DefaultStatus:  "following",
		BlockingStatus: "blocking",
	})
	require.NoError(t, env.registry.SeedDefaults(context.Background()))

	env.svc = NewRelationshipService(env.registry, env.edges, env.users,
		WithChunkSize(3),
		WithListCache(env.listCache),
	)
	env.svc.Hooks().Register(HookAfterCommit, "list-cache", ListCacheInvalidator(env.listCache))
	return env
}

func (e *testEnv) follow(t *testing.T, from, to uint) {
	t.Helper()
	require.NoError(t, e.svc.Add(context.Background(), from, to, "following"))
}

func userIDsOf(users []model.User) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
