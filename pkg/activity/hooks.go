package activity

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
)

// Event records one thing that happened to a component instance.
type Event struct {
	Verb      string
	Component string
	Ref       string
	// Fields lists the component's data keys, sorted. Values are left out.
	Fields   []string
	ActorID  string
	UserID   string
	TenantID string
	Channel  string
	Metadata map[string]any
	At       time.Time
}

// Valid reports whether the event names a verb and a component instance.
func (e Event) Valid() bool {
	return e.Verb != "" && e.Ref != ""
}

// Normalized returns a trimmed copy of e that shares no slices or maps with
// it. A zero At is stamped with the current time.
func (e Event) Normalized() Event {
	out := e
	out.Verb = strings.TrimSpace(e.Verb)
	out.Component = strings.TrimSpace(e.Component)
	out.Ref = strings.TrimSpace(e.Ref)
	out.ActorID = strings.TrimSpace(e.ActorID)
	out.UserID = strings.TrimSpace(e.UserID)
	out.TenantID = strings.TrimSpace(e.TenantID)
	out.Channel = strings.TrimSpace(e.Channel)
	out.Fields = slices.Clone(e.Fields)
	out.Metadata = nil
	if len(e.Metadata) > 0 {
		out.Metadata = make(map[string]any, len(e.Metadata))
		for key, value := range e.Metadata {
			out.Metadata[key] = value
		}
	}
	if out.At.IsZero() {
		out.At = time.Now()
	}
	return out
}

// Hook receives normalized, valid events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify implements Hook.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks delivers each event to every hook in order.
type Hooks []Hook

// Notify normalizes event and hands it to every hook. Invalid events are
// dropped; hook errors are joined and do not stop delivery.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = event.Normalized()
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
