package compose

import (
	"context"
	"sync"
	"time"
)

// site is an in-memory stand-in for the schema cache, data cache and remote
// API. Counters record how often each collaborator was asked for a key.
type site struct {
	mu sync.Mutex

	cachedSchemas map[string]Schema
	cachedData    map[string]Data
	remoteSchemas map[string]Schema
	remoteData    map[string]Data
	delays        map[string]time.Duration

	schemaCalls map[string]int
	objectCalls map[string]int
	commits     map[string]Data
	commitErr   error
	// writeBack makes commits visible to later data lookups.
	writeBack bool
}

func newSite() *site {
	return &site{
		cachedSchemas: map[string]Schema{},
		cachedData:    map[string]Data{},
		remoteSchemas: map[string]Schema{},
		remoteData:    map[string]Data{},
		delays:        map[string]time.Duration{},
		schemaCalls:   map[string]int{},
		objectCalls:   map[string]int{},
		commits:       map[string]Data{},
	}
}

func (s *site) Schema(_ context.Context, name string) (Schema, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := s.cachedSchemas[name]
	return schema, ok, nil
}

func (s *site) Data(_ context.Context, ref string) (Data, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.cachedData[ref]
	return data, ok, nil
}

func (s *site) GetSchema(_ context.Context, uri string) (Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaCalls[uri]++
	if schema, ok := s.remoteSchemas[uri]; ok {
		return schema, nil
	}
	return Schema{}, nil
}

func (s *site) GetObject(ctx context.Context, uri string) (Data, error) {
	s.mu.Lock()
	s.objectCalls[uri]++
	delay := s.delays[uri]
	data, ok := s.remoteData[uri]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *site) Commit(_ context.Context, ref string, data Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits[ref] = data
	if s.writeBack && s.commitErr == nil {
		s.cachedData[ref] = data
	}
	return s.commitErr
}

func (s *site) schemaCallCount(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaCalls[uri]
}

func (s *site) objectCallCount(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objectCalls[uri]
}

func (s *site) composer(opts ...Option) *Composer {
	base := []Option{
		WithPrefix("site.com"),
		WithSchemaProvider(s),
		WithDataProvider(s),
		WithRemote(s),
		WithCommitter(s),
		WithIDGenerator(sequence("1", "2", "3", "4", "5", "6", "7", "8")),
	}
	return New(append(base, opts...)...)
}

func sequence(ids ...string) IDGenerator {
	var (
		mu sync.Mutex
		i  int
	)
	return IDGeneratorFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i%len(ids)]
		i++
		return id
	})
}

// lifecycleMap is a LifecycleLoader over a plain map.
type lifecycleMap map[string]Lifecycle

func (m lifecycleMap) Lifecycle(name string) (Lifecycle, bool) {
	l, ok := m[name]
	return l, ok
}

type hooks struct {
	save   func(context.Context, Component) (Data, error)
	render func(context.Context, Component) (Data, error)
}

func (h hooks) Save(ctx context.Context, c Component) (Data, error) {
	if h.save == nil {
		return c.Data, nil
	}
	return h.save(ctx, c)
}

func (h hooks) Render(ctx context.Context, c Component) (Data, error) {
	if h.render == nil {
		return c.Data, nil
	}
	return h.render(ctx, c)
}
