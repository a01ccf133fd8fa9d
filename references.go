package compose

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/iter"
)

// hydrated is the set of child refs expanded into a component's data.
type hydrated map[string]struct{}

// resolveReferences hydrates the markers found under ChildrenField and
// ChildField of data in place and reports the refs it expanded. Every other
// field is left untouched.
func (c *Composer) resolveReferences(ctx context.Context, p *pass, path *trail, data Data) (hydrated, error) {
	refs := hydrated{}
	if raw, ok := data[ChildrenField]; ok {
		if items, ok := Classify(raw).(Collection); ok {
			for _, item := range items {
				if marker, ok := item.(Marker); ok {
					refs[marker.Ref] = struct{}{}
				}
			}
			children, err := c.resolveCollection(ctx, p, path, items)
			if err != nil {
				return nil, err
			}
			data[ChildrenField] = children
		}
	}

	if raw, ok := data[ChildField]; ok {
		if marker, ok := Classify(raw).(Marker); ok {
			refs[marker.Ref] = struct{}{}
			child, err := c.resolveMarker(ctx, p, path, marker)
			if err != nil {
				return nil, err
			}
			data[ChildField] = child
		}
	}
	return refs, nil
}

// dehydrate returns a copy of data whose expanded children are collapsed back
// into reference markers. Each child is committed under its own ref.
func dehydrate(data Data, refs hydrated) Data {
	if len(refs) == 0 {
		return data
	}
	out := make(Data, len(data))
	for key, value := range data {
		out[key] = value
	}
	if raw, ok := out[ChildrenField]; ok {
		if items, ok := asList(raw); ok {
			collapsed := make([]any, len(items))
			for i, item := range items {
				collapsed[i] = refs.collapse(item)
			}
			out[ChildrenField] = collapsed
		}
	}
	if raw, ok := out[ChildField]; ok {
		out[ChildField] = refs.collapse(raw)
	}
	return out
}

// collapse turns a hydrated child back into its marker. Values whose ref was
// not expanded in this pass are kept.
func (h hydrated) collapse(raw any) any {
	var ref any
	switch typed := raw.(type) {
	case Data:
		ref = typed[RefKey]
	case map[string]any:
		ref = typed[RefKey]
	default:
		return raw
	}
	s, ok := ref.(string)
	if !ok {
		return raw
	}
	if _, ok := h[s]; !ok {
		return raw
	}
	return map[string]any{RefKey: s}
}

func asList(raw any) ([]any, bool) {
	switch typed := raw.(type) {
	case []any:
		return typed, true
	case []Data:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func (c *Composer) resolveCollection(ctx context.Context, p *pass, path *trail, items Collection) ([]any, error) {
	mapper := iter.Mapper[Value, any]{MaxGoroutines: c.cfg.concurrency}
	return mapper.MapErr(items, func(item *Value) (any, error) {
		marker, ok := (*item).(Marker)
		if !ok {
			return Unwrap(*item), nil
		}
		return c.resolveMarker(ctx, p, path, marker)
	})
}

func (c *Composer) resolveMarker(ctx context.Context, p *pass, path *trail, marker Marker) (Data, error) {
	name, err := NameFromRef(marker.Ref)
	if err != nil {
		return nil, wrapResolveError("", marker.Ref, StageReferences, err)
	}
	return c.resolveNode(ctx, p, path, node{name: name, ref: marker.Ref, lookup: marker.Ref})
}

// Unwrap converts a Value back into its raw form. Object and Scalar values
// return the original value unchanged.
func Unwrap(v Value) any {
	switch typed := v.(type) {
	case Scalar:
		return typed.V
	case Marker:
		return map[string]any{RefKey: typed.Ref}
	case Object:
		return map[string]any(typed)
	case Collection:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Unwrap(item)
		}
		return out
	default:
		panic(fmt.Sprintf("compose: unknown value %T", v))
	}
}
