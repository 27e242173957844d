package resilient

import (
	"context"
	"time"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/ratelimit"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/orgball2608/tint-feed/pkg/metrics"
	"github.com/sony/gobreaker"
)

const authKey = "auth"

var (
	_ backend.Rows  = (*Backend)(nil)
	_ backend.Files = (*Backend)(nil)
	_ backend.Auth  = (*Backend)(nil)
)

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

type Opts struct {
	Rows    backend.Rows
	Files   backend.Files
	Auth    backend.Auth
	Limiter ratelimit.Limiter
	Breaker BreakerConfig
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// Backend throttles every call per collection and trips a circuit breaker per
// concern when the BaaS keeps failing.
type Backend struct {
	rows    backend.Rows
	files   backend.Files
	auth    backend.Auth
	limiter ratelimit.Limiter

	rowsCB  *gobreaker.CircuitBreaker
	filesCB *gobreaker.CircuitBreaker
	authCB  *gobreaker.CircuitBreaker

	log logger.Logger
}

func New(opts Opts) *Backend {
	log := opts.Logger.WithComponent("Resilient")

	b := &Backend{
		rows:    opts.Rows,
		files:   opts.Files,
		auth:    opts.Auth,
		limiter: opts.Limiter,
		log:     log,
	}
	b.rowsCB = newBreaker("rows", opts.Breaker, log, opts.Metrics)
	b.filesCB = newBreaker("files", opts.Breaker, log, opts.Metrics)
	b.authCB = newBreaker("auth", opts.Breaker, log, opts.Metrics)

	return b
}

func newBreaker(name string, cfg BreakerConfig, log logger.Logger, m *metrics.Metrics) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			if m != nil {
				m.BreakerState.WithLabelValues(name, to.String()).Inc()
			}
		},
		// Rejections caused by the request itself say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.IsClientFault(err) || errors.Is(err, context.Canceled)
		},
	})
}

func (b *Backend) call(ctx context.Context, cb *gobreaker.CircuitBreaker, key string, fn func() (any, error)) (any, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, key); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, errors.WrapWithCode(errors.ErrRateLimited, "client_rate_limit", key)
		}
	}

	res, err := cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.WrapWithCode(errors.ErrServiceUnavailable, "breaker_open", cb.Name()+": "+err.Error())
	}
	return res, err
}

func (b *Backend) ListRows(ctx context.Context, collection string, filters ...backend.Filter) ([]backend.Row, error) {
	res, err := b.call(ctx, b.rowsCB, collection, func() (any, error) {
		return b.rows.ListRows(ctx, collection, filters...)
	})
	if err != nil {
		return nil, err
	}
	return res.([]backend.Row), nil
}

func (b *Backend) GetRow(ctx context.Context, collection, id string) (backend.Row, error) {
	res, err := b.call(ctx, b.rowsCB, collection, func() (any, error) {
		return b.rows.GetRow(ctx, collection, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(backend.Row), nil
}

func (b *Backend) CreateRow(ctx context.Context, collection, id string, fields backend.Fields) (backend.Row, error) {
	res, err := b.call(ctx, b.rowsCB, collection, func() (any, error) {
		return b.rows.CreateRow(ctx, collection, id, fields)
	})
	if err != nil {
		return nil, err
	}
	return res.(backend.Row), nil
}

func (b *Backend) UpdateRow(ctx context.Context, collection, id string, fields backend.Fields) (backend.Row, error) {
	res, err := b.call(ctx, b.rowsCB, collection, func() (any, error) {
		return b.rows.UpdateRow(ctx, collection, id, fields)
	})
	if err != nil {
		return nil, err
	}
	return res.(backend.Row), nil
}

func (b *Backend) DeleteRow(ctx context.Context, collection, id string) error {
	_, err := b.call(ctx, b.rowsCB, collection, func() (any, error) {
		return nil, b.rows.DeleteRow(ctx, collection, id)
	})
	return err
}

func (b *Backend) UploadFile(ctx context.Context, bucket string, data []byte, contentType string) (string, error) {
	res, err := b.call(ctx, b.filesCB, bucket, func() (any, error) {
		return b.files.UploadFile(ctx, bucket, data, contentType)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (b *Backend) DeleteFile(ctx context.Context, bucket, fileID string) error {
	_, err := b.call(ctx, b.filesCB, bucket, func() (any, error) {
		return nil, b.files.DeleteFile(ctx, bucket, fileID)
	})
	return err
}

// GetFileURL is local string building for most stores, so it skips the limiter.
func (b *Backend) GetFileURL(ctx context.Context, bucket, fileID string) (string, error) {
	return b.files.GetFileURL(ctx, bucket, fileID)
}

func (b *Backend) CurrentUser(ctx context.Context) (*domain.SessionUser, error) {
	res, err := b.call(ctx, b.authCB, authKey, func() (any, error) {
		return b.auth.CurrentUser(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.SessionUser), nil
}

func (b *Backend) CreateSession(ctx context.Context, email, password string) (domain.Session, error) {
	res, err := b.call(ctx, b.authCB, authKey, func() (any, error) {
		return b.auth.CreateSession(ctx, email, password)
	})
	if err != nil {
		return domain.Session{}, err
	}
	return res.(domain.Session), nil
}

func (b *Backend) ResumeSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	res, err := b.call(ctx, b.authCB, authKey, func() (any, error) {
		return b.auth.ResumeSession(ctx, session)
	})
	if err != nil {
		return domain.Session{}, err
	}
	return res.(domain.Session), nil
}

func (b *Backend) DeleteSession(ctx context.Context) error {
	_, err := b.call(ctx, b.authCB, authKey, func() (any, error) {
		return nil, b.auth.DeleteSession(ctx)
	})
	return err
}

func (b *Backend) CreateAccount(ctx context.Context, email, password, name string) (domain.SessionUser, error) {
	res, err := b.call(ctx, b.authCB, authKey, func() (any, error) {
		return b.auth.CreateAccount(ctx, email, password, name)
	})
	if err != nil {
		return domain.SessionUser{}, err
	}
	return res.(domain.SessionUser), nil
}

func (b *Backend) SendRecovery(ctx context.Context, email string) error {
	_, err := b.call(ctx, b.authCB, authKey, func() (any, error) {
		return nil, b.auth.SendRecovery(ctx, email)
	})
	return err
}
