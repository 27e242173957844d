package refresherimpl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/tint-feed/internal/querycache"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRefresher(t *testing.T, refresh time.Duration) (*RefresherImpl, *querycache.Cache) {
	t.Helper()

	cache := querycache.New(querycache.Options{
		StaleTime: time.Hour,
		GCTime:    time.Minute,
		Logger:    logger.NewNop(),
	})
	t.Cleanup(cache.Close)

	cfg := &config.Config{}
	cfg.Cache.RefreshInterval = refresh

	return New(Opts{Cache: cache, Config: cfg, Logger: logger.NewNop()}), cache
}

func TestSchedule_RefetchesObservedQueries(t *testing.T) {
	r, cache := newTestRefresher(t, 20*time.Millisecond)

	var fetches atomic.Int32
	key := querycache.NewKey("posts")
	cache.Query(key, func(ctx context.Context) (any, error) {
		fetches.Add(1)
		return []string{"p1"}, nil
	})
	updates, unsubscribe := cache.Subscribe(key)
	defer unsubscribe()
	<-updates

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Schedule(ctx))

	assert.Eventually(t, func() bool { return fetches.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedule_StopsWithContext(t *testing.T) {
	r, cache := newTestRefresher(t, 10*time.Millisecond)

	var fetches atomic.Int32
	key := querycache.NewKey("posts")
	cache.Query(key, func(ctx context.Context) (any, error) {
		fetches.Add(1)
		return nil, nil
	})
	_, unsubscribe := cache.Subscribe(key)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Schedule(ctx))
	cancel()

	time.Sleep(50 * time.Millisecond)
	settled := fetches.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, fetches.Load())
}

func TestCollect_EvictsUnobservedEntries(t *testing.T) {
	r, cache := newTestRefresher(t, 0)
	r.now = func() time.Time { return time.Now().Add(time.Hour) }

	cache.SetData(querycache.NewKey("user", "u1"), func(any) any { return "u1" })
	observed := querycache.NewKey("user", "u2")
	cache.SetData(observed, func(any) any { return "u2" })
	_, unsubscribe := cache.Subscribe(observed)
	defer unsubscribe()

	r.collect(context.Background())

	_, ok := cache.GetData(querycache.NewKey("user", "u1"))
	assert.False(t, ok)
	_, ok = cache.GetData(observed)
	assert.True(t, ok)
}

func TestRefresh_SkipsAfterCancel(t *testing.T) {
	r, cache := newTestRefresher(t, 0)

	var fetches atomic.Int32
	key := querycache.NewKey("posts")
	cache.Query(key, func(ctx context.Context) (any, error) {
		fetches.Add(1)
		return nil, nil
	})
	_, unsubscribe := cache.Subscribe(key)
	defer unsubscribe()
	cache.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.refresh(ctx)
	cache.Wait()

	assert.Equal(t, int32(1), fetches.Load())
}
