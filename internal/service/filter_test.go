package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type post struct {
	Title    string
	AuthorID uint
}

func (p post) RelatedUserID() (uint, bool) { return p.AuthorID, p.AuthorID != 0 }

type opaque struct{ Title string }

func posts() []post {
	return []post{
		{"from bob", bob},
		{"from carol", carol},
		{"from dave", dave},
		{"system", 0},
	}
}

func titles(ps []post) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title
	}
	return out
}

func TestPositiveFilter(t *testing.T) {
	got := PositiveFilter(Viewer{ID: alice}, posts(), []uint{bob, dave})
	assert.Equal(t, []string{"from bob", "from dave"}, titles(got))

	assert.Empty(t, PositiveFilter(Anonymous(), posts(), []uint{bob}), "anonymous viewers fail closed")

	items := []opaque{{"a"}, {"b"}}
	assert.Empty(t, PositiveFilter(Viewer{ID: alice}, items, []uint{bob}), "unknown user field fails closed")
}

func TestNegativeFilter(t *testing.T) {
	got := NegativeFilter(Viewer{ID: alice}, posts(), []uint{carol})
	assert.Equal(t, []string{"from bob", "from dave", "system"}, titles(got))

	assert.Equal(t, posts(), NegativeFilter(Anonymous(), posts(), []uint{carol}), "anonymous viewers fail open")

	items := []opaque{{"a"}, {"b"}}
	assert.Equal(t, items, NegativeFilter(Viewer{ID: alice}, items, []uint{bob}), "unknown user field leaves input unchanged")
}

func TestPointerElementsImplementCapability(t *testing.T) {
	items := []*post{{"x", bob}, {"y", carol}}
	got := PositiveFilter(Viewer{ID: alice}, items, []uint{carol})
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].Title)
}

func TestViewerBoundContentFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.follow(t, alice, bob)
	env.follow(t, alice, carol)
	env.follow(t, carol, alice)
	env.follow(t, dave, alice)
	require.NoError(t, env.svc.Add(ctx, alice, dave, "blocking"))

	viewer := Viewer{ID: alice}

	got, err := FriendContent(ctx, env.svc, viewer, posts())
	require.NoError(t, err)
	assert.Equal(t, []string{"from carol"}, titles(got))

	got, err = FollowingContent(ctx, env.svc, viewer, posts())
	require.NoError(t, err)
	assert.Equal(t, []string{"from bob", "from carol"}, titles(got))

	got, err = FollowersContent(ctx, env.svc, viewer, posts())
	require.NoError(t, err)
	assert.Equal(t, []string{"from carol", "from dave"}, titles(got))

	got, err = UnblockedContent(ctx, env.svc, viewer, posts())
	require.NoError(t, err)
	assert.Equal(t, []string{"from bob", "from carol", "system"}, titles(got))

	got, err = FriendContent(ctx, env.svc, Anonymous(), posts())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = UnblockedContent(ctx, env.svc, Anonymous(), posts())
	require.NoError(t, err)
	assert.Len(t, got, 4)
}
