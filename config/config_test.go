package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sql", cfg.Storage.EdgeBackend)
	assert.Equal(t, "following", cfg.Relationships.DefaultStatus)
	assert.Equal(t, 20, cfg.Relationships.SubsetChunkSize)
	assert.Zero(t, cfg.Relationships.FriendCacheTTL)
}

func TestLoadConfigFrom_YAMLKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  driver: postgres
  port: 5432
relationships:
  subsetChunkSize: 50
  friendCacheTTL: 5m
social:
  providers:
    - name: twitter
      baseURL: http://social.local
      timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := LoadConfigFrom(path)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 50, cfg.Relationships.SubsetChunkSize)
	assert.Equal(t, 5*time.Minute, cfg.Relationships.FriendCacheTTL)
	require.Len(t, cfg.Social.Providers, 1)
	assert.Equal(t, "twitter", cfg.Social.Providers[0].Name)
	assert.Equal(t, 2*time.Second, cfg.Social.Providers[0].Timeout)
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("EDGE_BACKEND", "NEO4J")
	t.Setenv("REL_SUBSET_CHUNK_SIZE", "7")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REL_FRIEND_CACHE_TTL", "1h")

	cfg := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Equal(t, "neo4j", cfg.Storage.EdgeBackend)
	assert.Equal(t, 7, cfg.Relationships.SubsetChunkSize)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Relationships.FriendCacheTTL)
}
