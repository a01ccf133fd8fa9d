package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrVersionMismatch = errors.New("store: version mismatch")

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	Version   string    `json:"version,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Store loads/saves one value for a single key.
type Store[T any] interface {
	Load(ctx context.Context, key string) (value T, meta Meta, ok bool, err error)
	Save(ctx context.Context, key string, value T, meta Meta) (Meta, error)
}

type Mutator[T any] func(*T) error

// Update loads one value, applies fn, then saves. A non-empty expected
// version must match the stored one.
func Update[T any](ctx context.Context, s Store[T], key string, expected string, fn Mutator[T]) (T, Meta, error) {
	var zero T
	if s == nil {
		return zero, Meta{}, fmt.Errorf("store: store is required")
	}
	if key == "" {
		return zero, Meta{}, fmt.Errorf("store: key is required")
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("store: mutator is required")
	}

	value, loaded, ok, err := s.Load(ctx, key)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("store: load %q: %w", key, err)
	}
	if !ok {
		value = zero
		loaded = Meta{}
	}

	if expected != "" && loaded.Version != expected {
		return zero, loaded, fmt.Errorf("%w: expected %q, got %q", ErrVersionMismatch, expected, loaded.Version)
	}

	if err := fn(&value); err != nil {
		return zero, loaded, err
	}

	saved, err := s.Save(ctx, key, value, loaded)
	if err != nil {
		return zero, loaded, fmt.Errorf("store: save %q: %w", key, err)
	}
	return value, saved, nil
}
