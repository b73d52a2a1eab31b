package service

import (
	"context"
	"testing"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSlots(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]Direction{
		"following": Forward,
		"followers": Reverse,
		"friends":   Symmetrical,
		"blocking":  Forward,
		"blockers":  Reverse,
	}
	for slug, dir := range cases {
		res, err := env.registry.Resolve(slug)
		require.NoError(t, err, slug)
		assert.Equal(t, dir, res.Direction, slug)
		assert.Equal(t, slug, res.Slug())
	}

	_, err := env.registry.Resolve("nope")
	assert.True(t, apperror.IsNotFound(err))
}

func TestDefaultAndBlocking(t *testing.T) {
	env := newTestEnv(t)

	st, err := env.registry.DefaultFollowing()
	require.NoError(t, err)
	assert.Equal(t, "Following", st.Name)

	st, err = env.registry.Blocking()
	require.NoError(t, err)
	assert.True(t, st.LoginRequired)
	assert.True(t, st.Private)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.registry.SeedDefaults(context.Background()))

	list, err := env.registry.ListStatuses(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCreateStatusValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		status model.RelationshipStatus
	}{
		{"missing name", model.RelationshipStatus{FromSlug: "a", ToSlug: "b"}},
		{"malformed slug", model.RelationshipStatus{Name: "X", FromSlug: "Has Space", ToSlug: "b"}},
		{"empty to slug", model.RelationshipStatus{Name: "X", FromSlug: "a"}},
		{"slug reused within status", model.RelationshipStatus{Name: "X", FromSlug: "a", ToSlug: "a"}},
		{"slug owned by other status", model.RelationshipStatus{Name: "X", FromSlug: "fans", ToSlug: "followers"}},
		{"symmetrical slug collides with from slug", model.RelationshipStatus{Name: "X", FromSlug: "a", ToSlug: "b", SymmetricalSlug: strPtr("blocking")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := tc.status
			err := env.registry.CreateStatus(ctx, &st)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	list, err := env.registry.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "nothing written on validation failure")
}

func TestCreateUpdateDeleteStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st := &model.RelationshipStatus{Name: "Muting", Verb: "mute", FromSlug: "muting", ToSlug: "muters"}
	require.NoError(t, env.registry.CreateStatus(ctx, st))

	res, err := env.registry.Resolve("muters")
	require.NoError(t, err)
	assert.Equal(t, st.ID, res.Status.ID)

	st.ToSlug = "muted-by"
	require.NoError(t, env.registry.UpdateStatus(ctx, st))
	_, err = env.registry.Resolve("muters")
	assert.True(t, apperror.IsNotFound(err))
	_, err = env.registry.Resolve("muted-by")
	assert.NoError(t, err)

	require.NoError(t, env.svc.Add(ctx, alice, bob, "muting"))
	require.NoError(t, env.registry.DeleteStatus(ctx, st.ID))
	assert.Zero(t, env.edges.Len(), "edges of the deleted status are removed")
	_, err = env.registry.Resolve("muting")
	assert.True(t, apperror.IsNotFound(err))

	assert.True(t, apperror.IsNotFound(env.registry.DeleteStatus(ctx, st.ID)))
	assert.True(t, apperror.IsNotFound(env.registry.UpdateStatus(ctx, st)))
}

func TestUpdateKeepsOwnSlugs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.registry.DefaultFollowing()
	require.NoError(t, err)
	st.Name = "Follow"
	require.NoError(t, env.registry.UpdateStatus(ctx, &st))

	res, err := env.registry.Resolve("following")
	require.NoError(t, err)
	assert.Equal(t, "Follow", res.Status.Name)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "forward", Forward.String())
	assert.Equal(t, "reverse", Reverse.String())
	assert.Equal(t, "symmetrical", Symmetrical.String())
	assert.Equal(t, "unknown", Direction(9).String())
}
