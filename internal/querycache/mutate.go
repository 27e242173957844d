package querycache

import (
	"context"

	"github.com/orgball2608/tint-feed/pkg/errors"
)

// RemoteFunc performs the backend write of a mutation.
type RemoteFunc func(ctx context.Context) (any, error)

type mutateOptions struct {
	invalidate []Key
}

type MutateOption func(*mutateOptions)

// WithInvalidate refetches extra keys once the mutation settles.
func WithInvalidate(keys ...Key) MutateOption {
	return func(o *mutateOptions) {
		o.invalidate = append(o.invalidate, keys...)
	}
}

func errNoFetch(key Key) error {
	return errors.WrapWithCode(errors.ErrInvalidInput, "no_fetch", "no fetch registered for "+key.String())
}

// Mutate applies optimistic to key at once, runs remote, and restores the
// previous value verbatim if remote fails. Either way key and the
// WithInvalidate keys are refetched afterwards. Mutations are never retried.
// Until remote returns, reads of key serve the optimistic value and start no fetch.
func (c *Cache) Mutate(ctx context.Context, key Key, remote RemoteFunc, optimistic Updater, opts ...MutateOption) (any, error) {
	o := mutateOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	e.lastAccess = c.now()
	c.cancelLocked(e)
	e.pending++

	prevData, prevHasData, prevUpdatedAt := e.data, e.hasData, e.updatedAt
	if optimistic != nil {
		c.applyLocked(e, optimistic)
		c.notifyLocked(e)
	}
	c.mu.Unlock()

	result, err := remote(ctx)

	c.mu.Lock()
	e.pending--
	if err != nil && c.entries[key.String()] == e {
		c.cancelLocked(e)
		e.data, e.hasData, e.updatedAt = prevData, prevHasData, prevUpdatedAt
		c.notifyLocked(e)
	}
	c.mu.Unlock()

	if err != nil {
		c.metrics.Rollbacks.Inc()
		c.metrics.Mutations.WithLabelValues("error").Inc()
		c.log.Warn("Mutation failed, rolled back", "key", key.String(), "error", err)
	} else {
		c.metrics.Mutations.WithLabelValues("ok").Inc()
	}

	c.Invalidate(key)
	for _, k := range o.invalidate {
		c.Invalidate(k)
	}

	return result, err
}
