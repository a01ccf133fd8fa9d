package hydrate

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Target identifies the component a payload belongs to.
type Target struct {
	Name string
	Ref  string
}

func (t Target) String() string {
	if t.Ref != "" {
		return t.Ref
	}
	return t.Name
}

// PreHook mutates or replaces the payload before decoding.
type PreHook func(Target, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded value.
type PostHook[T any] func(Target, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder turns resolved component data into typed values by way of JSON.
// The zero value decodes leniently with no hooks.
type Decoder[T any] struct {
	pre       []PreHook
	post      []PostHook[T]
	useNumber bool
	strict    bool
}

// WithPreHook runs hook on a private copy of the payload before decoding.
// A hook returning a nil map keeps the current payload.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.pre = append(d.pre, hook)
		}
	}
}

// WithPostHook runs hook on the decoded value.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.post = append(d.post, hook)
		}
	}
}

// WithUseNumber keeps numbers in interface fields as json.Number.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) { d.useNumber = true }
}

// WithDisallowUnknownFields rejects payload keys without a matching field.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) { d.strict = true }
}

// NewDecoder applies opts to a zero Decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T. Hooks work on a copy, the caller's maps are
// never touched.
func (d *Decoder[T]) Decode(target Target, payload map[string]any) (T, error) {
	var out T
	if payload == nil {
		return out, fmt.Errorf("hydrate: payload is nil for %q", target)
	}

	raw, err := d.encode(target, payload)
	if err != nil {
		return out, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if d.useNumber {
		dec.UseNumber()
	}
	if d.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, fmt.Errorf("hydrate: decode %q: %w", target, err)
	}

	for _, hook := range d.post {
		if err := hook(target, &out); err != nil {
			var zero T
			return zero, fmt.Errorf("hydrate: post-hook for %q failed: %w", target, err)
		}
	}
	return out, nil
}

// encode serializes payload after running the pre-hooks over a decoded copy.
func (d *Decoder[T]) encode(target Target, payload map[string]any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("hydrate: marshal payload for %q: %w", target, err)
	}
	if len(d.pre) == 0 {
		return raw, nil
	}

	var working map[string]any
	if err := json.Unmarshal(raw, &working); err != nil {
		return nil, fmt.Errorf("hydrate: copy payload for %q: %w", target, err)
	}
	for _, hook := range d.pre {
		next, err := hook(target, working)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for %q failed: %w", target, err)
		}
		if next != nil {
			working = next
		}
	}
	if raw, err = json.Marshal(working); err != nil {
		return nil, fmt.Errorf("hydrate: marshal payload for %q: %w", target, err)
	}
	return raw, nil
}

// StripRefs is a PreHook that removes every reference key from the payload
// and its nested objects.
func StripRefs(key string) PreHook {
	return func(_ Target, payload map[string]any) (map[string]any, error) {
		stripRefs(payload, key)
		return payload, nil
	}
}

func stripRefs(value any, key string) {
	switch typed := value.(type) {
	case map[string]any:
		delete(typed, key)
		for _, nested := range typed {
			stripRefs(nested, key)
		}
	case []any:
		for _, nested := range typed {
			stripRefs(nested, key)
		}
	}
}
