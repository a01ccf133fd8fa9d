package compose

// Value is the closed set of shapes a component field can take. Only Marker
// values found under ChildrenField or ChildField are ever dereferenced.
type Value interface {
	isValue()
}

// Scalar wraps any value that is not a map or a slice.
type Scalar struct {
	V any
}

// Marker points at another component by reference.
type Marker struct {
	Ref string
}

// Collection is an ordered list of values.
type Collection []Value

// Object is a nested mapping that is not a reference marker.
type Object Data

func (Scalar) isValue()     {}
func (Marker) isValue()     {}
func (Collection) isValue() {}
func (Object) isValue()     {}

// Classify maps a raw decoded value onto the Value union. A map is a Marker
// only when RefKey is its sole key and holds a non-empty string.
func Classify(raw any) Value {
	switch typed := raw.(type) {
	case Data:
		return classifyMap(typed)
	case map[string]any:
		return classifyMap(typed)
	case []any:
		out := make(Collection, len(typed))
		for i, item := range typed {
			out[i] = Classify(item)
		}
		return out
	case []Data:
		out := make(Collection, len(typed))
		for i, item := range typed {
			out[i] = classifyMap(item)
		}
		return out
	case []map[string]any:
		out := make(Collection, len(typed))
		for i, item := range typed {
			out[i] = classifyMap(item)
		}
		return out
	default:
		return Scalar{V: raw}
	}
}

// MarkerOf reports the reference carried by raw when it is a reference marker.
func MarkerOf(raw any) (string, bool) {
	marker, ok := Classify(raw).(Marker)
	if !ok {
		return "", false
	}
	return marker.Ref, true
}

func classifyMap(m map[string]any) Value {
	if len(m) == 1 {
		if ref, ok := m[RefKey].(string); ok && ref != "" {
			return Marker{Ref: ref}
		}
	}
	return Object(m)
}
