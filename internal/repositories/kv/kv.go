package kv

import (
	"context"
	"errors"
)

var ErrCannotEncode = errors.New("error encode kv value")

//go:generate go run go.uber.org/mock/mockgen -source=kv.go -destination=mocks/mock.go

// Repository persists small JSON blobs that must survive a restart (auth session, user cache).
type Repository interface {
	// Get decodes the value stored under key into dst and reports whether the key existed.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}
