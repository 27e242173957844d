package feedimpl

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/backend/memoryimpl"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (fx *fixture) seedComment(t *testing.T, id, postID, content string) {
	t.Helper()
	_, err := fx.store.CreateRow(context.Background(), "comments", id, backend.Fields{
		"post_id": postID,
		"user_id": "author",
		"content": content,
		"likes":   []string{},
	})
	require.NoError(t, err)
}

func (fx *fixture) cachedComments(t *testing.T, postID string) []domain.Comment {
	t.Helper()
	data, ok := fx.cache.GetData(feed.CommentsKey(postID))
	require.True(t, ok)
	return data.([]domain.Comment)
}

func TestCreateComment_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, nil)
	fx.seedComment(t, "c1", "P", "first")
	fx.seedComment(t, "other", "Q", "elsewhere")

	fx.feed.Comments("P")
	fx.cache.Wait()
	require.Len(t, fx.cachedComments(t, "P"), 1)

	created, err := fx.feed.CreateComment(ctx, feed.CreateCommentInput{
		PostID:  "P",
		UserID:  "u1",
		Content: "Nice shot!",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nice shot!", created.Content)

	fx.cache.Wait()
	view := fx.feed.Comments("P")
	require.Len(t, view.Data, 2)

	var found bool
	for _, c := range view.Data {
		if c.ID == created.ID {
			found = true
			assert.Equal(t, "Nice shot!", c.Content)
			assert.Equal(t, "u1", c.UserID)
		}
	}
	assert.True(t, found)
}

func TestCreateComment_OptimisticThenRollback(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, nil)
	fx.seedComment(t, "c1", "P", "first")
	fx.feed.Comments("P")
	fx.cache.Wait()

	var seen atomic.Int32
	fx.store.InjectFault(func(op, _ string) error {
		if op == "create" {
			seen.Store(int32(len(fx.cachedComments(t, "P"))))
			return errors.ErrNetwork
		}
		return nil
	})

	_, err := fx.feed.CreateComment(ctx, feed.CreateCommentInput{PostID: "P", UserID: "u1", Content: "lost"})
	require.ErrorIs(t, err, errors.ErrNetwork)

	assert.Equal(t, int32(2), seen.Load())
	assert.Len(t, fx.cachedComments(t, "P"), 1)
}

func TestCreateComment_Validation(t *testing.T) {
	fx := newFixture(t, nil, nil)

	_, err := fx.feed.CreateComment(context.Background(), feed.CreateCommentInput{PostID: "P", UserID: "u1", Content: "   "})
	assert.True(t, errors.IsInvalidInput(err))

	_, err = fx.feed.CreateComment(context.Background(), feed.CreateCommentInput{UserID: "u1", Content: "hi"})
	assert.True(t, errors.IsInvalidInput(err))
}

func TestToggleCommentLike_Parity(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, nil)
	fx.seedComment(t, "c1", "P", "likeable")
	fx.feed.Comments("P")
	fx.cache.Wait()

	for i := 1; i <= 3; i++ {
		c, err := fx.feed.ToggleCommentLike(ctx, "P", "c1", "u1")
		require.NoError(t, err)
		assert.Equal(t, i%2 == 1, c.Likes.Has("u1"))
	}

	fx.cache.Wait()
	comments := fx.cachedComments(t, "P")
	require.Len(t, comments, 1)
	assert.Equal(t, domain.LikeSet{"u1"}, comments[0].Likes)

	row, err := fx.store.GetRow(ctx, "comments", "c1")
	require.NoError(t, err)
	stored, err := decodeComment(row)
	require.NoError(t, err)
	assert.Equal(t, domain.LikeSet{"u1"}, stored.Likes)
}

func TestToggleCommentLike_RapidTogglesFollowCallParity(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	entered := make(chan struct{})
	var updates atomic.Int32
	fx := newFixtureWithStaleTime(t, 0, func(s *memoryimpl.Store) backend.Rows {
		return hookRows{Rows: s, beforeUpdate: func() {
			if updates.Add(1) == 1 {
				close(entered)
				<-release
			}
		}}
	}, nil)
	fx.seedComment(t, "c1", "P", "likeable")
	fx.feed.Comments("P")
	fx.cache.Wait()

	first := make(chan error, 1)
	go func() {
		_, err := fx.feed.ToggleCommentLike(ctx, "P", "c1", "u1")
		first <- err
	}()
	<-entered

	// a re-render while the first write is pending serves the optimistic like
	view := fx.feed.Comments("P")
	require.Len(t, view.Data, 1)
	assert.True(t, view.Data[0].Likes.Has("u1"))

	_, err := fx.feed.ToggleCommentLike(ctx, "P", "c1", "u1")
	require.NoError(t, err)

	fx.cache.Wait()
	comments := fx.cachedComments(t, "P")
	require.Len(t, comments, 1)
	assert.False(t, comments[0].Likes.Has("u1"), "two toggles cancel out locally")

	close(release)
	require.NoError(t, <-first)
	fx.cache.Wait()

	row, err := fx.store.GetRow(ctx, "comments", "c1")
	require.NoError(t, err)
	stored, err := decodeComment(row)
	require.NoError(t, err)

	comments = fx.cachedComments(t, "P")
	require.Len(t, comments, 1)
	assert.Equal(t, stored.Likes, comments[0].Likes)
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, nil)
	fx.seedComment(t, "c1", "P", "one")
	fx.seedComment(t, "c2", "P", "two")
	fx.feed.Comments("P")
	fx.cache.Wait()

	fx.store.InjectFault(func(op, _ string) error {
		if op == "delete" {
			return errors.ErrServiceUnavailable
		}
		return nil
	})
	require.Error(t, fx.feed.DeleteComment(ctx, "P", "c1"))
	assert.Len(t, fx.cachedComments(t, "P"), 2)

	fx.store.InjectFault(nil)
	require.NoError(t, fx.feed.DeleteComment(ctx, "P", "c1"))
	comments := fx.cachedComments(t, "P")
	require.Len(t, comments, 1)
	assert.Equal(t, "c2", comments[0].ID)

	fx.cache.Wait()
	assert.True(t, errors.IsNotFound(fx.feed.DeleteComment(ctx, "P", "c1")))
}
