package store

import (
	"context"
	"fmt"

	compose "github.com/goliatone/go-compose"
)

// Components serves component data keyed by ref.
type Components struct {
	Store Store[compose.Data]
}

// NewComponents wraps s. A nil s selects a MemoryStore.
func NewComponents(s Store[compose.Data]) *Components {
	if s == nil {
		s = NewMemoryStore[compose.Data]()
	}
	return &Components{Store: s}
}

// Data implements compose.DataProvider.
func (c *Components) Data(ctx context.Context, ref string) (compose.Data, bool, error) {
	data, _, ok, err := c.Store.Load(ctx, ref)
	if err != nil {
		return nil, false, fmt.Errorf("store: load component %q: %w", ref, err)
	}
	return data, ok, nil
}

// Commit implements compose.Committer.
func (c *Components) Commit(ctx context.Context, ref string, data compose.Data) error {
	if ref == "" {
		return fmt.Errorf("store: component ref is required")
	}
	if _, err := c.Store.Save(ctx, ref, data, Meta{}); err != nil {
		return fmt.Errorf("store: commit component %q: %w", ref, err)
	}
	return nil
}

// Schemas serves component schemas keyed by component name.
type Schemas struct {
	Store Store[compose.Schema]
}

// NewSchemas wraps s. A nil s selects a MemoryStore.
func NewSchemas(s Store[compose.Schema]) *Schemas {
	if s == nil {
		s = NewMemoryStore[compose.Schema]()
	}
	return &Schemas{Store: s}
}

// Schema implements compose.SchemaProvider.
func (s *Schemas) Schema(ctx context.Context, name string) (compose.Schema, bool, error) {
	schema, _, ok, err := s.Store.Load(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("store: load schema %q: %w", name, err)
	}
	return schema, ok, nil
}

// Remember caches schema under name.
func (s *Schemas) Remember(ctx context.Context, name string, schema compose.Schema) error {
	if name == "" {
		return fmt.Errorf("store: schema name is required")
	}
	if _, err := s.Store.Save(ctx, name, schema, Meta{}); err != nil {
		return fmt.Errorf("store: remember schema %q: %w", name, err)
	}
	return nil
}

// Through returns a compose.Remote that remembers every schema fetched by
// remote. Object fetches pass through untouched.
func (s *Schemas) Through(remote compose.Remote) compose.Remote {
	return &rememberingRemote{Remote: remote, schemas: s}
}

type rememberingRemote struct {
	compose.Remote
	schemas *Schemas
}

func (r *rememberingRemote) GetSchema(ctx context.Context, uri string) (compose.Schema, error) {
	schema, err := r.Remote.GetSchema(ctx, uri)
	if err != nil {
		return nil, err
	}
	// A failed write only costs a later refetch.
	if name, err := compose.NameFromRef(uri); err == nil {
		_ = r.schemas.Remember(ctx, name, schema)
	}
	return schema, nil
}
