package querycache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/orgball2608/tint-feed/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*Cache, *metrics.Metrics) {
	t.Helper()
	return newCacheWithStaleTime(t, time.Hour)
}

func newCacheWithStaleTime(t *testing.T, stale time.Duration) (*Cache, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewNop()
	c := New(Options{
		StaleTime: stale,
		GCTime:    time.Minute,
		Logger:    logger.NewNop(),
		Metrics:   m,
	})
	t.Cleanup(c.Close)
	return c, m
}

func constant(v any) FetchFunc {
	return func(context.Context) (any, error) { return v, nil }
}

func TestKey(t *testing.T) {
	k := NewKey("comments", "p1")

	assert.Equal(t, "comments:p1", k.String())
	assert.True(t, k.HasPrefix(NewKey("comments")))
	assert.True(t, k.HasPrefix(k))
	assert.True(t, k.HasPrefix(NewKey()))
	assert.False(t, k.HasPrefix(NewKey("comm")))
	assert.False(t, k.HasPrefix(NewKey("comments", "p1", "x")))
	assert.False(t, NewKey("posts").HasPrefix(NewKey("comments")))
}

func TestCache_QueryLoadsInBackground(t *testing.T) {
	c, m := newCache(t)
	key := NewKey("posts")

	snap := c.Query(key, constant([]string{"a", "b"}))
	assert.False(t, snap.HasData)
	assert.True(t, snap.IsLoading)
	assert.True(t, snap.IsFetching)
	assert.NoError(t, snap.Err)

	c.Wait()

	snap = c.Query(key, nil)
	assert.True(t, snap.HasData)
	assert.False(t, snap.IsLoading)
	assert.False(t, snap.IsFetching)
	assert.Equal(t, []string{"a", "b"}, snap.Data)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("ok")))
}

func TestCache_FreshDataIsNotRefetched(t *testing.T) {
	c, _ := newCache(t)
	key := NewKey("posts")

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return "data", nil
	}

	_, err := c.Fetch(context.Background(), key, fetch)
	require.NoError(t, err)

	c.Query(key, fetch)
	c.Query(key, fetch)
	c.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCache_ReadFailureKeepsLastGoodSnapshot(t *testing.T) {
	c, m := newCache(t)
	key := NewKey("posts")

	var failing atomic.Bool
	fetch := func(context.Context) (any, error) {
		if failing.Load() {
			return nil, errors.ErrNetwork
		}
		return "good", nil
	}

	_, err := c.Fetch(context.Background(), key, fetch)
	require.NoError(t, err)

	failing.Store(true)
	c.Invalidate(key)
	c.Wait()

	snap := c.Query(key, nil)
	assert.Equal(t, "good", snap.Data)
	assert.ErrorIs(t, snap.Err, errors.ErrNetwork)
	c.Wait()

	assert.GreaterOrEqual(t, testutil.ToFloat64(m.Fetches.WithLabelValues("error")), 1.0)
}

func TestCache_FetchWithoutFunction(t *testing.T) {
	c, _ := newCache(t)

	_, err := c.Fetch(context.Background(), NewKey("posts"), nil)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestCache_CancelDiscardsResult(t *testing.T) {
	c, m := newCache(t)
	key := NewKey("posts")

	release := make(chan struct{})
	c.Query(key, func(context.Context) (any, error) {
		<-release
		return "late", nil
	})

	c.Cancel(key)
	ch, unsubscribe := c.Subscribe(key)
	snap := <-ch
	unsubscribe()
	assert.False(t, snap.IsFetching)

	close(release)
	c.Wait()

	_, ok := c.GetData(key)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.DiscardedFetch), 1.0)
}

func TestCache_SetDataAndGetData(t *testing.T) {
	c, _ := newCache(t)
	key := NewKey("user", "u1")

	_, ok := c.GetData(key)
	assert.False(t, ok)

	c.SetData(key, func(old any) any {
		assert.Nil(t, old)
		return 1
	})
	c.SetData(key, func(old any) any { return old.(int) + 1 })

	v, ok := c.GetData(key)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	// nil leaves the entry as it is
	c.SetData(key, func(any) any { return nil })
	v, _ = c.GetData(key)
	assert.Equal(t, 2, v)
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c, _ := newCache(t)

	var p1, p2, posts atomic.Int32
	counter := func(n *atomic.Int32) FetchFunc {
		return func(context.Context) (any, error) {
			n.Add(1)
			return n.Load(), nil
		}
	}

	c.Query(NewKey("comments", "p1"), counter(&p1))
	c.Query(NewKey("comments", "p2"), counter(&p2))
	c.Query(NewKey("posts"), counter(&posts))
	c.Wait()

	n := c.Invalidate(NewKey("comments"))
	c.Wait()

	assert.Equal(t, 2, n)
	assert.Equal(t, int32(2), p1.Load())
	assert.Equal(t, int32(2), p2.Load())
	assert.Equal(t, int32(1), posts.Load())
}

func TestCache_SubscribeDeliversLatest(t *testing.T) {
	c, _ := newCache(t)
	key := NewKey("posts")

	ch, unsubscribe := c.Subscribe(key)

	first := <-ch
	assert.False(t, first.HasData)

	for i := 1; i <= 3; i++ {
		v := i
		c.SetData(key, func(any) any { return v })
	}

	last := <-ch
	assert.Equal(t, 3, last.Data)

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
}

func TestCache_RefetchObserved(t *testing.T) {
	c, _ := newCache(t)

	var observed, unobserved atomic.Int32
	c.Query(NewKey("posts"), func(context.Context) (any, error) {
		observed.Add(1)
		return nil, nil
	})
	c.Query(NewKey("user", "u1"), func(context.Context) (any, error) {
		unobserved.Add(1)
		return nil, nil
	})
	c.Wait()

	_, unsubscribe := c.Subscribe(NewKey("posts"))
	defer unsubscribe()

	assert.Equal(t, 1, c.RefetchObserved(context.Background()))
	c.Wait()

	assert.Equal(t, int32(2), observed.Load())
	assert.Equal(t, int32(1), unobserved.Load())
}

func TestCache_GC(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New(Options{
		GCTime:  time.Minute,
		Logger:  logger.NewNop(),
		Metrics: metrics.NewNop(),
		Now:     func() time.Time { return now },
	})
	defer c.Close()

	c.SetData(NewKey("posts"), func(any) any { return "p" })
	c.SetData(NewKey("user", "u1"), func(any) any { return "u" })
	_, unsubscribe := c.Subscribe(NewKey("posts"))
	defer unsubscribe()

	assert.Equal(t, 0, c.GC(now.Add(30*time.Second)))
	assert.Equal(t, 1, c.GC(now.Add(2*time.Minute)))
	assert.Equal(t, 1, c.Len())

	_, ok := c.GetData(NewKey("posts"))
	assert.True(t, ok)
}
