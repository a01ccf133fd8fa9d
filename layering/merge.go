package layering

import "reflect"

// Overlay returns a shallow copy of base with every top-level key of top
// written over it. Nested values are shared, not merged.
func Overlay[M ~map[string]any](base, top M) M {
	out := make(M, len(base)+len(top))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range top {
		out[key] = value
	}
	return out
}

// Clone returns a deep copy of a component data tree. Maps and slices of
// any element type are copied recursively. Pointers, channels and funcs are
// shared, and structs are copied by value.
func Clone[T any](value T) T {
	cloned := cloneAny(value)
	if out, ok := cloned.(T); ok {
		return out
	}
	var zero T
	return zero
}

func cloneAny(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		if v == nil {
			return v
		}
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneAny(item)
		}
		return out
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneAny(item)
		}
		return out
	case string, bool, int, int64, float64:
		return v
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return cloneReflect(rv).Interface()
	default:
		return value
	}
}

// cloneReflect handles named map and slice types such as compose.Data.
func cloneReflect(rv reflect.Value) reflect.Value {
	if rv.IsNil() {
		return rv
	}
	if rv.Kind() == reflect.Map {
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		for iter := rv.MapRange(); iter.Next(); {
			out.SetMapIndex(iter.Key(), cloneElem(iter.Value(), rv.Type().Elem()))
		}
		return out
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	for i := range rv.Len() {
		out.Index(i).Set(cloneElem(rv.Index(i), rv.Type().Elem()))
	}
	return out
}

func cloneElem(v reflect.Value, typ reflect.Type) reflect.Value {
	if v.Kind() == reflect.Interface && v.IsNil() {
		return reflect.Zero(typ)
	}
	cloned := cloneAny(v.Interface())
	if cloned == nil {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(cloned).Convert(typ)
}
