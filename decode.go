package compose

import (
	"fmt"

	"github.com/goliatone/go-compose/internal/hydrate"
)

// DecodeOption tunes Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	strict    bool
	stripRefs bool
}

// DecodeStrict rejects fields that have no counterpart in T.
func DecodeStrict() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.strict = true
	}
}

// DecodeWithoutRefs removes RefKey from the component and all of its
// descendants before decoding.
func DecodeWithoutRefs() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.stripRefs = true
	}
}

// Decode converts a resolved component into T using its JSON field tags.
func Decode[T any](data Data, opts ...DecodeOption) (T, error) {
	cfg := decodeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var decoderOpts []hydrate.DecoderOption[T]
	if cfg.stripRefs {
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](hydrate.StripRefs(RefKey)))
	}
	if cfg.strict {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}

	ref, _ := data[RefKey].(string)
	target := hydrate.Target{Ref: ref}
	if name, err := NameFromRef(ref); err == nil {
		target.Name = name
	}

	out, err := hydrate.NewDecoder[T](decoderOpts...).Decode(target, data)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("compose: decode: %w", err)
	}
	return out, nil
}
