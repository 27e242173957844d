package refresherimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/tint-feed/internal/querycache"
	"github.com/orgball2608/tint-feed/internal/refresher"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"go.uber.org/fx"
)

const gcInterval = time.Minute

type Opts struct {
	fx.In

	Cache  *querycache.Cache
	Config *config.Config
	Logger logger.Logger
}

type RefresherImpl struct {
	cache           *querycache.Cache
	logger          logger.Logger
	refreshInterval time.Duration
	gcInterval      time.Duration
	now             func() time.Time
}

func New(opts Opts) *RefresherImpl {
	return &RefresherImpl{
		cache:           opts.Cache,
		logger:          opts.Logger.WithComponent("Refresher"),
		refreshInterval: opts.Config.Cache.RefreshInterval,
		gcInterval:      gcInterval,
		now:             time.Now,
	}
}

var _ refresher.Client = (*RefresherImpl)(nil)

func (r *RefresherImpl) Schedule(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create refresh scheduler: %w", err)
	}

	if r.refreshInterval > 0 {
		_, err = scheduler.NewJob(
			gocron.DurationJob(r.refreshInterval),
			gocron.NewTask(func() { r.refresh(ctx) }),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule query refresh: %w", err)
		}
	} else {
		r.logger.Info("Query refresh disabled")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(r.gcInterval),
		gocron.NewTask(func() { r.collect(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule cache gc: %w", err)
	}

	scheduler.Start()
	r.logger.Info("Cache jobs scheduled", "refresh_interval", r.refreshInterval.String(), "gc_interval", r.gcInterval.String())

	go func() {
		<-ctx.Done()
		r.logger.Info("Stopping cache scheduler")
		if err := scheduler.Shutdown(); err != nil {
			r.logger.Error("Failed to shut down cache scheduler", "error", err)
		}
	}()

	return nil
}

func (r *RefresherImpl) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if n := r.cache.RefetchObserved(ctx); n > 0 {
		r.logger.Debug("Refetching observed queries", "count", n)
	}
}

func (r *RefresherImpl) collect(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if n := r.cache.GC(r.now()); n > 0 {
		r.logger.Info("Cache entries evicted", "count", n)
	}
}
