package app

import (
	"context"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/backend/memoryimpl"
	"github.com/orgball2608/tint-feed/internal/backend/resilient"
	"github.com/orgball2608/tint-feed/internal/backend/s3impl"
	"github.com/orgball2608/tint-feed/internal/backend/supabaseimpl"
	"github.com/orgball2608/tint-feed/internal/ratelimit"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/orgball2608/tint-feed/pkg/metrics"
	"go.uber.org/fx"
)

type backendOpts struct {
	fx.In
	LC fx.Lifecycle

	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

type backendResult struct {
	fx.Out

	Rows  backend.Rows
	Files backend.Files
	Auth  backend.Auth
}

// newBackend picks the BaaS and media store from config and wraps them with
// client-side rate limiting and circuit breakers.
func newBackend(opts backendOpts) (backendResult, error) {
	cfg := opts.Config

	var (
		rows  backend.Rows
		files backend.Files
		auth  backend.Auth
	)

	switch cfg.Backend.Provider {
	case config.ProviderMemory:
		store := memoryimpl.New()
		rows, files, auth = store, store, store
	case config.ProviderSupabase:
		cl, err := supabaseimpl.New(supabaseimpl.Opts{Config: cfg, Logger: opts.Logger})
		if err != nil {
			return backendResult{}, err
		}
		rows, files, auth = cl, cl, cl
	default:
		return backendResult{}, errors.WrapWithCode(errors.ErrInvalidInput, "backend_provider", "unknown backend provider "+cfg.Backend.Provider)
	}

	if cfg.Storage.Provider == "s3" {
		st, err := s3impl.New(s3impl.Opts{Config: cfg, Logger: opts.Logger})
		if err != nil {
			return backendResult{}, err
		}
		opts.LC.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return st.EnsureBucket(ctx, cfg.Storage.MediaBucket)
			},
		})
		files = st
	}

	opts.Logger.Info("Backend selected", "provider", cfg.Backend.Provider, "storage", cfg.Storage.Provider)

	wrapped := resilient.New(resilient.Opts{
		Rows:    rows,
		Files:   files,
		Auth:    auth,
		Limiter: ratelimit.NewInMemoryLimiter(cfg.Backend.RatePerSecond, cfg.Backend.Burst),
		Breaker: resilient.BreakerConfig{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			MinRequests:      cfg.Breaker.MinRequests,
		},
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})

	return backendResult{Rows: wrapped, Files: wrapped, Auth: wrapped}, nil
}
