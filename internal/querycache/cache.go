package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/orgball2608/tint-feed/pkg/metrics"
	"github.com/orgball2608/tint-feed/pkg/retry"
)

// FetchFunc loads the authoritative value of a query.
type FetchFunc func(ctx context.Context) (any, error)

// Updater derives a new cached value from the current one. old is nil when
// the entry holds no data; returning nil leaves the entry without data.
type Updater func(old any) any

// Snapshot is a read-only view of one cache entry.
type Snapshot struct {
	Data       any
	HasData    bool
	IsLoading  bool
	IsFetching bool
	Err        error
	UpdatedAt  time.Time
}

type Options struct {
	// StaleTime is how long fetched data counts as fresh. Zero refetches on every Query.
	StaleTime time.Duration
	// GCTime is how long an unobserved entry survives after its last access.
	GCTime  time.Duration
	Retry   retry.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

type entry struct {
	key        Key
	data       any
	hasData    bool
	err        error
	updatedAt  time.Time
	lastAccess time.Time
	invalid    bool
	fetch      FetchFunc

	// gen identifies the fetch allowed to write. Cancelling or superseding a
	// fetch bumps it, so the old result is dropped on arrival.
	gen      uint64
	inFlight bool

	// pending counts unsettled mutations. While it is non-zero no fetch may
	// start or write, so the optimistic value stays visible.
	pending int

	observers map[int]chan Snapshot
}

// Cache is a process-wide, goroutine-safe query cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextObs int

	staleTime time.Duration
	gcTime    time.Duration
	retry     retry.Config
	log       logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options) *Cache {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Cache{
		entries:   make(map[string]*entry),
		staleTime: opts.StaleTime,
		gcTime:    opts.GCTime,
		retry:     opts.Retry,
		log:       opts.Logger.WithComponent("QueryCache"),
		metrics:   opts.Metrics,
		now:       opts.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key.String()]
	if !ok {
		e = &entry{
			key:        key.clone(),
			lastAccess: c.now(),
			observers:  make(map[int]chan Snapshot),
		}
		c.entries[key.String()] = e
	}
	return e
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Data:       e.data,
		HasData:    e.hasData,
		IsLoading:  !e.hasData && e.inFlight,
		IsFetching: e.inFlight,
		Err:        e.err,
		UpdatedAt:  e.updatedAt,
	}
}

// notifyLocked hands the current snapshot to every observer. Channels hold
// one value; an unread older snapshot is replaced by the newer one.
func (c *Cache) notifyLocked(e *entry) {
	if len(e.observers) == 0 {
		return
	}
	snap := e.snapshot()
	for _, ch := range e.observers {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Cache) isStaleLocked(e *entry) bool {
	return !e.hasData || e.invalid || c.now().Sub(e.updatedAt) >= c.staleTime
}

// Query returns the cached snapshot of key and starts a background fetch when
// the entry is missing, invalidated or stale. It never blocks on the network.
func (c *Cache) Query(key Key, fetch FetchFunc) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	e.lastAccess = c.now()
	if fetch != nil {
		e.fetch = fetch
	}

	if e.hasData {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	if e.fetch != nil && !e.inFlight && e.pending == 0 && c.isStaleLocked(e) {
		c.startBackgroundLocked(e)
	}

	return e.snapshot()
}

// Fetch loads key synchronously and stores the result. An older in-flight
// fetch for the same key is superseded.
func (c *Cache) Fetch(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.lastAccess = c.now()
	if fetch != nil {
		e.fetch = fetch
	}
	fn := e.fetch
	if fn == nil {
		c.mu.Unlock()
		return nil, errNoFetch(key)
	}
	gen := c.beginLocked(e)
	c.mu.Unlock()

	return c.run(ctx, e, gen, fn)
}

func (c *Cache) beginLocked(e *entry) uint64 {
	e.gen++
	e.inFlight = true
	c.wg.Add(1)
	c.notifyLocked(e)
	return e.gen
}

func (c *Cache) startBackgroundLocked(e *entry) {
	gen := c.beginLocked(e)
	fn := e.fetch
	go func() {
		_, _ = c.run(c.ctx, e, gen, fn)
	}()
}

func (c *Cache) run(ctx context.Context, e *entry, gen uint64, fn FetchFunc) (any, error) {
	defer c.wg.Done()

	var data any
	err := retry.Do(ctx, c.log, "fetch "+e.key.String(), func() error {
		var err error
		data, err = fn(ctx)
		return err
	}, c.retry)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e.gen != gen || c.entries[e.key.String()] != e {
		c.metrics.DiscardedFetch.Inc()
		c.log.Debug("Discarded cancelled fetch", "key", e.key.String())
		return data, err
	}
	if e.pending > 0 {
		e.inFlight = false
		e.invalid = true
		c.metrics.DiscardedFetch.Inc()
		c.log.Debug("Discarded fetch during pending mutation", "key", e.key.String())
		c.notifyLocked(e)
		return data, err
	}

	e.inFlight = false
	if err != nil {
		c.metrics.Fetches.WithLabelValues("error").Inc()
		c.log.Warn("Fetch failed, keeping last snapshot", "key", e.key.String(), "error", err)
		e.err = err
	} else {
		c.metrics.Fetches.WithLabelValues("ok").Inc()
		e.data = data
		e.hasData = true
		e.err = nil
		e.invalid = false
		e.updatedAt = c.now()
	}
	c.notifyLocked(e)

	return data, err
}

// GetData returns the cached value of key without triggering a fetch.
func (c *Cache) GetData(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}

// SetData replaces the cached value of key with updater(current).
func (c *Cache) SetData(key Key, updater Updater) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	c.applyLocked(e, updater)
	c.notifyLocked(e)
}

func (c *Cache) applyLocked(e *entry, updater Updater) {
	var old any
	if e.hasData {
		old = e.data
	}
	next := updater(old)
	if next == nil {
		return
	}
	e.data = next
	e.hasData = true
	e.updatedAt = c.now()
}

// Cancel drops the in-flight fetch of key. The request keeps running; its
// result is ignored when it arrives.
func (c *Cache) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key.String()]; ok {
		c.cancelLocked(e)
	}
}

func (c *Cache) cancelLocked(e *entry) {
	if !e.inFlight {
		return
	}
	e.gen++
	e.inFlight = false
	c.notifyLocked(e)
}

// Invalidate marks every entry under prefix stale and refetches those that
// know how to. A refetch supersedes any fetch already in flight.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		n++
		e.invalid = true
		if e.pending > 0 {
			// The last mutation to settle refetches.
			c.cancelLocked(e)
			continue
		}
		if e.fetch != nil {
			c.startBackgroundLocked(e)
		}
	}
	return n
}

// Subscribe registers an observer of key. The channel receives the current
// snapshot at once and the latest snapshot after every change.
func (c *Cache) Subscribe(key Key) (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	id := c.nextObs
	c.nextObs++

	ch := make(chan Snapshot, 1)
	ch <- e.snapshot()
	e.observers[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			e.lastAccess = c.now()
			delete(e.observers, id)
			close(ch)
		})
	}

	return ch, unsubscribe
}

// RefetchObserved refetches every observed entry that is not already loading.
func (c *Cache) RefetchObserved(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if len(e.observers) == 0 || e.fetch == nil || e.inFlight || e.pending > 0 {
			continue
		}
		c.startBackgroundLocked(e)
		n++
	}
	return n
}

// GC drops entries nobody observes or fetches that were last used before now-GCTime.
func (c *Cache) GC(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if len(e.observers) > 0 || e.inFlight || e.pending > 0 || now.Sub(e.lastAccess) < c.gcTime {
			continue
		}
		delete(c.entries, k)
		n++
	}
	if n > 0 {
		c.log.Debug("Collected cache entries", "count", n)
	}
	return n
}

// Len reports the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Wait blocks until every started fetch has returned.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close aborts background fetches and waits for them.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}
