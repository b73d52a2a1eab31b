package bootstrap

import (
	"context"
	"testing"

	"relgraph/config"
	"relgraph/internal/model"
	"relgraph/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{EdgeBackend: EdgeBackendMemory},
		Relationships: config.RelationshipsConfig{
			DefaultStatus:   "following",
			BlockingStatus:  "blocking",
			SubsetChunkSize: 2,
			SeedDefaults:    true,
		},
	}
}

func TestBuildMemoryBackend(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, memoryConfig())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.DB)
	assert.Nil(t, app.Redis)
	assert.Nil(t, app.Events)
	assert.Empty(t, app.Health(ctx))
	assert.Equal(t, 2, app.Relationships.ChunkSize())

	for id, name := range map[uint]string{1: "alice", 2: "bob", 3: "carol"} {
		require.NoError(t, app.Users.Create(ctx, &model.User{ID: id, Username: name}))
	}
	require.NoError(t, app.Relationships.Add(ctx, 1, 2, "following"))
	require.NoError(t, app.Relationships.Add(ctx, 2, 3, "following"))

	ok, err := app.Relationships.Exists(ctx, 2, 1, "followers")
	require.NoError(t, err)
	assert.True(t, ok)

	result, err := app.Classifier.Classify(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, service.ClassLevel2, result)

	// 首块缓存由变更回调清除
	first, err := app.Relationships.FollowersSubset(ctx, 2, 0, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.NoError(t, app.Relationships.Add(ctx, 3, 2, "following"))
	first, err = app.Relationships.FollowersSubset(ctx, 2, 0, 0)
	require.NoError(t, err)
	assert.Len(t, first, 2)
}

func TestBuildRejectsUnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.EdgeBackend = "cassandra"
	cfg.Database.Driver = "sqlite"
	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}
