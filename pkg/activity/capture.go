package activity

import (
	"context"
	"sync"
)

// CaptureHook keeps every event it sees. Notify returns Err.
type CaptureHook struct {
	Err error

	mu     sync.Mutex
	events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	h.events = append(h.events, event.Normalized())
	h.mu.Unlock()
	return h.Err
}

// Events returns the captured events in arrival order.
func (h *CaptureHook) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

// Refs returns the refs of captured events with the given verb.
func (h *CaptureHook) Refs(verb string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var refs []string
	for _, event := range h.events {
		if event.Verb == verb {
			refs = append(refs, event.Ref)
		}
	}
	return refs
}
