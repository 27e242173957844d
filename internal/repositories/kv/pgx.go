package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/tint-feed/internal/repositories"
	"github.com/orgball2608/tint-feed/pkg/logger"
)

const table = "kv_store"

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("KV"),
	}
}

func (r *PgxRepository) Get(ctx context.Context, key string, dst any) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("value").
		From(table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: %v", repositories.ErrBadQuery, err)
	}

	var raw []byte
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get kv %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		r.logger.Warn("Dropping undecodable kv value", "key", key, "error", err)
		return false, nil
	}

	return true, nil
}

func (r *PgxRepository) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCannotEncode, err)
	}

	query, args, err := repositories.SqBuilder.
		Insert(table).
		Columns("key", "value", "updated_at").
		Values(key, raw, time.Now()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", repositories.ErrBadQuery, err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set kv %q: %w", key, err)
	}

	return nil
}

func (r *PgxRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := repositories.SqBuilder.
		Delete(table).
		Where(squirrel.Eq{"key": keys}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", repositories.ErrBadQuery, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete kv keys: %w", err)
	}

	r.logger.Debug("Deleted kv keys", "keys", keys, "rows", tag.RowsAffected())
	return nil
}

var _ Repository = (*PgxRepository)(nil)
