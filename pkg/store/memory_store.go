package store

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-compose/layering"
	"github.com/segmentio/ksuid"
)

// MemoryStore is an in-memory Store. Values are deep-cloned on the way in and
// out so callers never share maps with the store.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
	now     func() time.Time
}

type memoryRecord[T any] struct {
	value T
	meta  Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]memoryRecord[T]{}, now: time.Now}
}

func (s *MemoryStore[T]) Load(_ context.Context, key string) (T, Meta, bool, error) {
	var zero T
	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return layering.Clone(record.value), record.meta, true, nil
}

// Save stores value under key with a fresh version. The incoming meta is
// ignored apart from being replaced.
func (s *MemoryStore[T]) Save(ctx context.Context, key string, value T, _ Meta) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	meta := Meta{Version: ksuid.New().String(), UpdatedAt: s.now().UTC()}

	s.mu.Lock()
	s.records[key] = memoryRecord[T]{value: layering.Clone(value), meta: meta}
	s.mu.Unlock()
	return meta, nil
}

// Keys returns the stored keys in no particular order.
func (s *MemoryStore[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	return keys
}
