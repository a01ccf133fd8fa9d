// Package uid provides instance identifier generators for compose.WithIDGenerator.
//
// KSUID is the default used by the composer: identifiers are time ordered,
// which keeps instances of one component type sorted by creation in stores
// that order by key. UUID produces random v4 identifiers.
package uid

import (
	"fmt"
	"strings"
	"sync"

	compose "github.com/goliatone/go-compose"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// KSUID returns a generator of K-sortable identifiers.
func KSUID() compose.IDGenerator {
	return compose.IDGeneratorFunc(func() string {
		return ksuid.New().String()
	})
}

// UUID returns a generator of random UUIDs.
func UUID() compose.IDGenerator {
	return compose.IDGeneratorFunc(func() string {
		return uuid.NewString()
	})
}

// Compact returns a generator of UUIDs without dashes, for URI segments that
// must stay short.
func Compact() compose.IDGenerator {
	return compose.IDGeneratorFunc(func() string {
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	})
}

// Sequence returns a deterministic generator that cycles through ids. It is
// meant for tests and examples and panics when ids is empty.
func Sequence(ids ...string) compose.IDGenerator {
	if len(ids) == 0 {
		panic("uid: sequence requires at least one id")
	}
	var (
		mu       sync.Mutex
		position int
	)
	return compose.IDGeneratorFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[position%len(ids)]
		position++
		return id
	})
}

// ByName returns the generator called name: "ksuid" (or ""), "uuid" or
// "compact".
func ByName(name string) (compose.IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ksuid":
		return KSUID(), nil
	case "uuid":
		return UUID(), nil
	case "compact":
		return Compact(), nil
	default:
		return nil, fmt.Errorf("uid: unknown generator %q", name)
	}
}
