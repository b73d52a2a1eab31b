package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"relgraph/internal/model"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testStatus uint = 7

// runEdgeStoreContract 三种后端共用的行为校验
func runEdgeStoreContract(t *testing.T, store EdgeStore) {
	ctx := context.Background()

	t.Run("add is idempotent", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, 1, 2, testStatus, false))
		require.NoError(t, store.Add(ctx, 1, 2, testStatus, false))

		rels, err := store.EdgesFrom(ctx, 1, testStatus)
		require.NoError(t, err)
		assert.Len(t, rels, 1)
	})

	t.Run("exists is directional", func(t *testing.T) {
		ok, err := store.Exists(ctx, 1, 2, testStatus, false)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Exists(ctx, 2, 1, testStatus, false)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.Exists(ctx, 2, 1, testStatus, true)
		require.NoError(t, err)
		assert.True(t, ok, "symmetrical check accepts either direction")
	})

	t.Run("other status does not leak", func(t *testing.T) {
		ok, err := store.Exists(ctx, 1, 2, testStatus+1, true)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("symmetrical add writes both directions", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, 3, 4, testStatus, true))

		from, err := store.EdgesFrom(ctx, 4, testStatus)
		require.NoError(t, err)
		require.Len(t, from, 1)
		assert.Equal(t, uint(3), from[0].ToUserID)

		require.NoError(t, store.Remove(ctx, 4, 3, testStatus, true))
		ok, err := store.Exists(ctx, 3, 4, testStatus, true)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("exists any", func(t *testing.T) {
		ok, err := store.ExistsAny(ctx, []uint{9, 1}, 2, testStatus)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.ExistsAny(ctx, []uint{9, 8}, 2, testStatus)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.ExistsAny(ctx, nil, 2, testStatus)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("edges newest first", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, 5, 1, testStatus, false))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, store.Add(ctx, 6, 1, testStatus, false))

		rels, err := store.EdgesTo(ctx, 1, testStatus)
		require.NoError(t, err)
		require.Len(t, rels, 2)
		assert.Equal(t, uint(6), rels[0].FromUserID)
		assert.Equal(t, uint(5), rels[1].FromUserID)
	})

	t.Run("remove missing edge is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Remove(ctx, 42, 43, testStatus, false))
	})

	t.Run("delete by status", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, 1, 2, testStatus+1, false))
		require.NoError(t, store.DeleteByStatus(ctx, testStatus))

		rels, err := store.EdgesFrom(ctx, 1, testStatus)
		require.NoError(t, err)
		assert.Empty(t, rels)

		ok, err := store.Exists(ctx, 1, 2, testStatus+1, false)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, store.DeleteByStatus(ctx, testStatus+1))
	})
}

func TestMemoryEdgeStore(t *testing.T) {
	runEdgeStoreContract(t, NewMemoryEdgeStore())
}

func TestRelationshipRepository(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Relationship{}))
	require.NoError(t, db.Where("status_id IN ?", []uint{testStatus, testStatus + 1}).
		Delete(&model.Relationship{}).Error)

	runEdgeStoreContract(t, NewRelationshipRepository(db))
}

func TestNeo4jRelationshipRepository(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	if testing.Short() || uri == "" {
		t.Skip("NEO4J_URI not set")
	}
	ctx := context.Background()
	driver, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(os.Getenv("NEO4J_USERNAME"), os.Getenv("NEO4J_PASSWORD"), ""))
	require.NoError(t, err)
	defer driver.Close(ctx)
	require.NoError(t, driver.VerifyConnectivity(ctx))

	repo := NewNeo4jRelationshipRepository(driver)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.DeleteByStatus(ctx, testStatus))
	require.NoError(t, repo.DeleteByStatus(ctx, testStatus+1))

	runEdgeStoreContract(t, repo)

	t.Run("concurrent add keeps a single edge", func(t *testing.T) {
		const from, to uint = 11, 12
		var wg sync.WaitGroup
		errs := make(chan error, 32)
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				// 一半走对称写入，顺带覆盖反向加锁
				errs <- repo.Add(ctx, from, to, testStatus, i%2 == 0)
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		rels, err := repo.EdgesFrom(ctx, from, testStatus)
		require.NoError(t, err)
		assert.Len(t, rels, 1)
		rels, err = repo.EdgesFrom(ctx, to, testStatus)
		require.NoError(t, err)
		assert.Len(t, rels, 1)
	})
}

func TestLockOrder(t *testing.T) {
	assert.Equal(t, []int64{3, 9}, lockOrder(3, 9))
	assert.Equal(t, []int64{3, 9}, lockOrder(9, 3))
	assert.Equal(t, []int64{5}, lockOrder(5, 5))
}
