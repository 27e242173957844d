package kv

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps encoded values in process memory. It pairs with the
// in-memory backend, where nothing outlives the process anyway.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: map[string][]byte{}}
}

func (r *MemoryRepository) Get(_ context.Context, key string, dst any) (bool, error) {
	r.mu.Lock()
	raw, ok := r.data[key]
	r.mu.Unlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCannotEncode, err)
	}

	r.mu.Lock()
	r.data[key] = raw
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		delete(r.data, k)
	}
	return nil
}

// Raw returns the encoded value under key, or "" when it is absent.
func (r *MemoryRepository) Raw(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.data[key])
}
