package supabaseimpl

import (
	"context"
	"sync"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/fx"
)

var (
	_ backend.Rows  = (*Client)(nil)
	_ backend.Files = (*Client)(nil)
	_ backend.Auth  = (*Client)(nil)
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// Client adapts the Supabase SDK to the backend interfaces.
// The SDK swaps its auth token in place on sign in, so every call holds mu.
type Client struct {
	mu     sync.RWMutex
	sb     *supabase.Client
	url    string
	key    string
	schema string
	log    logger.Logger
}

func New(opts Opts) (*Client, error) {
	cfg := opts.Config.Supabase

	sb, err := supabase.NewClient(cfg.URL, cfg.Key, &supabase.ClientOptions{Schema: cfg.Schema})
	if err != nil {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, "supabase_config", "failed to create supabase client")
	}

	return &Client{
		sb:     sb,
		url:    cfg.URL,
		key:    cfg.Key,
		schema: cfg.Schema,
		log:    opts.Logger.WithComponent("Supabase"),
	}, nil
}

// resetLocked drops any user token so later calls run with the anon key. Callers hold mu.
func (c *Client) resetLocked() error {
	fresh, err := supabase.NewClient(c.url, c.key, &supabase.ClientOptions{Schema: c.schema})
	if err != nil {
		return errors.Wrap(err, "reset supabase client")
	}
	c.sb = fresh
	return nil
}

// withClient runs fn against the SDK client while no session swap is in progress.
func (c *Client) withClient(ctx context.Context, fn func(sb *supabase.Client) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return fn(c.sb)
}

// withSessionSwap runs fn exclusively, for calls that replace the SDK session.
func (c *Client) withSessionSwap(ctx context.Context, fn func(sb *supabase.Client) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(c.sb)
}
