package feedimpl

import (
	"context"
	"testing"
	"time"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCards(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, nil)
	fx.feed.now = func() time.Time { return time.Now().Add(3 * time.Hour) }

	fx.seedPost(t, "p1", "first")
	_, err := fx.store.CreateRow(ctx, "posts", "p2", backend.Fields{
		"user_id": "author",
		"caption": "second",
		"media":   []string{existingA},
		"likes":   []string{"viewer", "other"},
	})
	require.NoError(t, err)
	require.NoError(t, fx.feed.PrefetchPosts(ctx))

	t.Run("author still loading", func(t *testing.T) {
		view := fx.feed.Cards("viewer")
		require.True(t, view.HasData)
		require.Len(t, view.Data, 2)
		for _, c := range view.Data {
			assert.Empty(t, c.AuthorName)
			assert.Equal(t, "U", c.AuthorInitials)
		}
	})

	_, err = fx.store.CreateRow(ctx, "users", "author", backend.Fields{"name": "Ana Lima", "email": "ana@example.com"})
	require.NoError(t, err)
	_, err = fx.cache.Fetch(ctx, feed.UserKey("author"), fx.feed.fetchUser("author"))
	require.NoError(t, err)

	view := fx.feed.Cards("viewer")
	require.Len(t, view.Data, 2)

	byID := map[string]feed.Card{}
	for _, c := range view.Data {
		byID[c.PostID] = c
		assert.Equal(t, "Ana Lima", c.AuthorName)
		assert.Equal(t, "AL", c.AuthorInitials)
		assert.Equal(t, "3h ago", c.Age)
	}

	assert.Equal(t, "0", byID["p1"].Likes)
	assert.False(t, byID["p1"].LikedByViewer)
	assert.Equal(t, "2", byID["p2"].Likes)
	assert.True(t, byID["p2"].LikedByViewer)
	assert.Equal(t, []string{existingA}, byID["p2"].Media)

	assert.False(t, fx.feed.Cards("").Data[0].LikedByViewer)
}

func TestCards_Empty(t *testing.T) {
	fx := newFixture(t, nil, nil)
	require.NoError(t, fx.feed.PrefetchPosts(context.Background()))

	view := fx.feed.Cards("viewer")
	assert.True(t, view.HasData)
	assert.Empty(t, view.Data)
	assert.NoError(t, view.Err)
}
