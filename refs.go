package compose

import (
	"context"
	"fmt"
	"strings"
)

// UnknownPrefix stands in for a missing site prefix when building URIs.
const UnknownPrefix = "unknown"

const (
	componentsSegment = "/components/"
	instancesSegment  = "/instances/"
)

type prefixKey struct{}

// ContextWithPrefix overrides the composer's site prefix for calls made with ctx.
func ContextWithPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, prefixKey{}, prefix)
}

// PrefixFromContext returns the prefix stored by ContextWithPrefix.
func PrefixFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	prefix, ok := ctx.Value(prefixKey{}).(string)
	return prefix, ok
}

// ComponentURI returns the default URI of a component type under prefix.
func ComponentURI(prefix, name string) string {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = UnknownPrefix
	}
	return prefix + componentsSegment + name
}

// InstanceURI returns the URI of one instance of a component type.
func InstanceURI(prefix, name, id string) string {
	return ComponentURI(prefix, name) + instancesSegment + id
}

// PrefixFromRef returns the site prefix a component or instance URI sits
// under, the part before its last components segment.
func PrefixFromRef(ref string) (string, bool) {
	idx := strings.LastIndex(ref, componentsSegment)
	if idx <= 0 {
		return "", false
	}
	return ref[:idx], true
}

// NameFromRef extracts the component name from a component or instance URI.
func NameFromRef(ref string) (string, error) {
	idx := strings.LastIndex(ref, componentsSegment)
	if idx < 0 {
		return "", fmt.Errorf("%w: %q has no %q segment", ErrInvalidRef, ref, strings.Trim(componentsSegment, "/"))
	}
	rest := ref[idx+len(componentsSegment):]
	if cut := strings.Index(rest, "/"); cut >= 0 {
		rest = rest[:cut]
	}
	if cut := strings.IndexAny(rest, "@."); cut >= 0 {
		rest = rest[:cut]
	}
	if rest == "" {
		return "", fmt.Errorf("%w: %q has an empty component name", ErrInvalidRef, ref)
	}
	return rest, nil
}
