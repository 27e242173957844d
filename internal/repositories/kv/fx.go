package kv

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/orgball2608/tint-feed/internal/migrations"
	"github.com/orgball2608/tint-feed/internal/pgx"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Provide(New)

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config *config.Config
	Logger logger.Logger
}

// New picks the store for persisted session blobs. With the in-memory backend
// no Postgres connection is opened; otherwise the kv_store schema is migrated first.
func New(opts Opts) (Repository, error) {
	if opts.Config.Backend.Provider == config.ProviderMemory {
		opts.Logger.Info("Using in-memory kv store")
		return NewMemoryRepository(), nil
	}

	if err := migrate(opts.Config.GetDSN()); err != nil {
		return nil, err
	}

	pool, err := pgx.New(pgx.Opts{LC: opts.LC, Logger: opts.Logger, Config: opts.Config})
	if err != nil {
		return nil, err
	}

	return NewPgxRepository(pool, opts.Logger), nil
}

func migrate(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration db: %w", err)
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		return fmt.Errorf("failed to migrate kv store: %w", err)
	}
	return nil
}
