package app

import (
	"context"

	"github.com/orgball2608/tint-feed/internal/auth"
	"github.com/orgball2608/tint-feed/internal/auth/authimpl"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/orgball2608/tint-feed/internal/feed/feedimpl"
	"github.com/orgball2608/tint-feed/internal/media"
	"github.com/orgball2608/tint-feed/internal/media/mediaimpl"
	"github.com/orgball2608/tint-feed/internal/querycache"
	"github.com/orgball2608/tint-feed/internal/refresher"
	"github.com/orgball2608/tint-feed/internal/refresher/refresherimpl"
	repositories "github.com/orgball2608/tint-feed/internal/repositories/fx"
	"github.com/orgball2608/tint-feed/internal/telegram"
	"github.com/orgball2608/tint-feed/internal/telegram/telegramimpl"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/orgball2608/tint-feed/pkg/metrics"
	"github.com/orgball2608/tint-feed/pkg/retry"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		prometheus.NewRegistry,
		newMetrics,
		newCache,
		newBackend,
	),
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		), fx.Annotate(
			mediaimpl.New,
			fx.As(new(media.Client)),
		), fx.Annotate(
			feedimpl.New,
			fx.As(new(feed.Client)),
		),
		fx.Annotate(
			authimpl.New,
			fx.As(new(auth.Client)),
		),
		fx.Annotate(
			refresherimpl.New,
			fx.As(new(refresher.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(run),
)

func newMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func newCache(lc fx.Lifecycle, cfg *config.Config, log logger.Logger, m *metrics.Metrics) *querycache.Cache {
	rc := retry.DefaultConfig()
	rc.MaxRetries = cfg.Cache.RetryCount

	cache := querycache.New(querycache.Options{
		StaleTime: cfg.Cache.StaleTime,
		GCTime:    cfg.Cache.GCTime,
		Retry:     rc,
		Logger:    log,
		Metrics:   m,
	})

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			cache.Close()
			return nil
		},
	})

	return cache
}

type runOpts struct {
	fx.In
	LC fx.Lifecycle

	Logger    logger.Logger
	Config    *config.Config
	Registry  *prometheus.Registry
	Telegram  telegram.Client
	Auth      auth.Client
	Feed      feed.Client
	Refresher refresher.Client
}

func run(opts runOpts) {
	log := opts.Logger
	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	srv := newHttpServer(log, opts.Config, opts.Registry, func() feed.View[[]feed.Card] {
		viewerID := ""
		if u := opts.Auth.Current(); u != nil {
			viewerID = u.ID
		}
		return opts.Feed.Cards(viewerID)
	})

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go startHttpServer(log, srv)

			user, err := opts.Auth.Restore(ctx)
			if err != nil {
				log.Error("Session restore error", "error", err)
				opts.Telegram.Alert("Session restore failed", errors.UserMessage(err))
			}

			if user == nil && opts.Config.Session.Email != "" {
				user, err = opts.Auth.Login(ctx, opts.Config.Session.Email, opts.Config.Session.Password)
				if err != nil {
					log.Error("Login error", "error", err)
					opts.Telegram.Alert("Login failed", errors.UserMessage(err))
				}
			}
			if user != nil {
				log.Info("Signed in", "user_id", user.ID)
			}

			if err := opts.Feed.PrefetchPosts(ctx); err != nil {
				log.Warn("Prefetch posts error", "error", err)
				opts.Telegram.Alert("Feed prefetch failed", errors.UserMessage(err))
			}

			if err := opts.Refresher.Schedule(jobsCtx); err != nil {
				log.Error("Schedule cache jobs error", "error", err)
				return err
			}

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancelJobs()
			return srv.Shutdown(ctx)
		},
	})
}
