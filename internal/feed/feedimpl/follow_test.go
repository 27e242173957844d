package feedimpl

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (fx *fixture) seedUser(t *testing.T, id, name string) {
	t.Helper()
	_, err := fx.store.CreateRow(context.Background(), "users", id, backend.Fields{
		"name":      name,
		"email":     id + "@example.com",
		"following": []string{},
		"followers": []string{},
	})
	require.NoError(t, err)
}

func (fx *fixture) storedUser(t *testing.T, id string) domain.User {
	t.Helper()
	row, err := fx.store.GetRow(context.Background(), "users", id)
	require.NoError(t, err)
	u, err := decodeUser(row)
	require.NoError(t, err)
	return u
}

func TestToggleFollow(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, nil)
	fx.seedUser(t, "u1", "Ann")
	fx.seedUser(t, "u2", "Bob")

	fx.feed.User("u1")
	fx.cache.Wait()

	require.NoError(t, fx.feed.ToggleFollow(ctx, "u1", "u2"))
	assert.Equal(t, domain.LikeSet{"u2"}, fx.storedUser(t, "u1").Following)
	assert.Equal(t, domain.LikeSet{"u1"}, fx.storedUser(t, "u2").Followers)

	fx.cache.Wait()
	view := fx.feed.User("u1")
	require.NotNil(t, view.Data)
	assert.True(t, view.Data.IsFollowing("u2"))

	require.NoError(t, fx.feed.ToggleFollow(ctx, "u1", "u2"))
	assert.Empty(t, fx.storedUser(t, "u1").Following)
	assert.Empty(t, fx.storedUser(t, "u2").Followers)
}

func TestToggleFollow_Validation(t *testing.T) {
	fx := newFixture(t, nil, nil)

	err := fx.feed.ToggleFollow(context.Background(), "u1", "u1")
	require.True(t, errors.IsInvalidInput(err))
	assert.Equal(t, "You cannot follow yourself", errors.UserMessage(err))

	assert.True(t, errors.IsInvalidInput(fx.feed.ToggleFollow(context.Background(), "", "u2")))
	assert.True(t, errors.IsInvalidInput(fx.feed.ToggleFollow(context.Background(), "u1", "")))
}

func TestToggleFollow_PartialFailureRollsBackCache(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, nil)
	fx.seedUser(t, "u1", "Ann")
	fx.seedUser(t, "u2", "Bob")

	// Seeded without a fetch function so no refetch races the assertions.
	fx.cache.SetData(feed.UserKey("u1"), func(any) any {
		return &domain.User{ID: "u1", Name: "Ann", Following: domain.LikeSet{}}
	})

	var updates atomic.Int32
	var sawOptimistic atomic.Bool
	fx.store.InjectFault(func(op, _ string) error {
		if op != "update" {
			return nil
		}
		if updates.Add(1) == 2 {
			return errors.ErrNetwork
		}
		data, _ := fx.cache.GetData(feed.UserKey("u1"))
		sawOptimistic.Store(data.(*domain.User).IsFollowing("u2"))
		return nil
	})

	err := fx.feed.ToggleFollow(ctx, "u1", "u2")
	require.ErrorIs(t, err, errors.ErrNetwork)
	assert.True(t, sawOptimistic.Load())

	data, ok := fx.cache.GetData(feed.UserKey("u1"))
	require.True(t, ok)
	assert.False(t, data.(*domain.User).IsFollowing("u2"))

	// Not atomic: the first row keeps its write.
	fx.store.InjectFault(nil)
	assert.Equal(t, domain.LikeSet{"u2"}, fx.storedUser(t, "u1").Following)
	assert.Empty(t, fx.storedUser(t, "u2").Followers)
}

func TestToggleFollow_UnknownTarget(t *testing.T) {
	fx := newFixture(t, nil, nil)
	fx.seedUser(t, "u1", "Ann")

	err := fx.feed.ToggleFollow(context.Background(), "u1", "ghost")
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, fx.storedUser(t, "u1").Following)
}
