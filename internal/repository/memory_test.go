package repository

import (
	"context"
	"testing"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMemoryStatusStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStatusStore()

	following := &model.RelationshipStatus{Name: "Following", Verb: "follow",
		FromSlug: "following", ToSlug: "followers", SymmetricalSlug: strPtr("friends")}
	require.NoError(t, store.Create(ctx, following))
	assert.NotZero(t, following.ID)

	dup := &model.RelationshipStatus{Name: "Dup", FromSlug: "following", ToSlug: "x"}
	err := store.Create(ctx, dup)
	assert.True(t, apperror.IsValidation(err))

	blocking := &model.RelationshipStatus{Name: "Blocking", FromSlug: "blocking", ToSlug: "blockers"}
	require.NoError(t, store.Create(ctx, blocking))

	blocking.Name = "Block"
	require.NoError(t, store.Update(ctx, blocking))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Following", list[0].Name)
	assert.Equal(t, "Block", list[1].Name)

	require.NoError(t, store.Delete(ctx, blocking.ID))
	assert.True(t, apperror.IsNotFound(store.Delete(ctx, blocking.ID)))
	assert.True(t, apperror.IsNotFound(store.Update(ctx, blocking)))
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore(
		model.User{ID: 1, Username: "alice"},
		model.User{ID: 2, Username: "bob"},
	)
	store.Put(model.User{ID: 3, Username: "carol"})

	u, err := store.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, uint(3), u.ID)

	_, err = store.GetByID(ctx, 99)
	assert.True(t, apperror.IsNotFound(err))

	users, err := store.GetByIDs(ctx, []uint{3, 99, 1})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "carol", users[0].Username)
	assert.Equal(t, "alice", users[1].Username)
}

func TestMemorySocialAccountStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySocialAccountStore()
	require.NoError(t, store.Link(ctx, 1, "twitter", "alice_t"))

	acc, found, err := store.Get(ctx, 1, "twitter")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice_t", acc.ExternalUsername)

	_, found, err = store.Get(ctx, 1, "facebook")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOrderByIDs(t *testing.T) {
	users := []model.User{{ID: 1}, {ID: 2}, {ID: 3}}
	ordered := orderByIDs([]uint{3, 1, 4}, users)
	require.Len(t, ordered, 2)
	assert.Equal(t, uint(3), ordered[0].ID)
	assert.Equal(t, uint(1), ordered[1].ID)
}
