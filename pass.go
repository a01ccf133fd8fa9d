package compose

import "sync"

// pass holds state shared by every node of one ResolveAll call.
type pass struct {
	prefix string

	mu      sync.Mutex
	schemas map[string]*schemaEntry
}

type schemaEntry struct {
	once   sync.Once
	schema Schema
	source Source
	err    error
}

func newPass(prefix string) *pass {
	return &pass{
		prefix:  prefix,
		schemas: map[string]*schemaEntry{},
	}
}

// schema acquires the schema behind key, a component type URI, once per
// pass. Callers after the first see SourcePass.
func (p *pass) schema(key string, load func() (Schema, Source, error)) (Schema, Source, error) {
	p.mu.Lock()
	entry, ok := p.schemas[key]
	if !ok {
		entry = &schemaEntry{}
		p.schemas[key] = entry
	}
	p.mu.Unlock()

	first := false
	entry.once.Do(func() {
		first = true
		entry.schema, entry.source, entry.err = load()
	})
	if entry.err != nil {
		return nil, entry.source, entry.err
	}
	if first {
		return entry.schema, entry.source, nil
	}
	return entry.schema, SourcePass, nil
}

// trail is the chain of ancestor refs of a node.
type trail struct {
	ref    string
	parent *trail
	depth  int
}

func (t *trail) push(ref string) *trail {
	depth := 0
	if t != nil {
		depth = t.depth + 1
	}
	return &trail{ref: ref, parent: t, depth: depth}
}

func (t *trail) contains(ref string) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur.ref == ref {
			return true
		}
	}
	return false
}
