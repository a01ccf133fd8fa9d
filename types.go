package compose

import "context"

const (
	// RefKey is the identity field carried by reference markers and resolved components.
	RefKey = "_ref"
	// ChildrenField holds an ordered list of reference markers.
	ChildrenField = "children"
	// ChildField holds a single reference marker.
	ChildField = "child"
)

// Data maps component field names to values.
type Data map[string]any

// Schema is an opaque description of a component type. The composer never
// mutates it.
type Schema map[string]any

// Request asks for one component to be resolved. Ref is synthesized when empty.
type Request struct {
	Name string `json:"name"`
	Data Data   `json:"data,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

// Resolved is one output slot of ResolveAll. Data is nil when Err is set.
type Resolved struct {
	Ref  string
	Data Data
	Err  error
}

// Component is the view of a node handed to lifecycle hooks.
type Component struct {
	Name   string
	Ref    string
	Schema Schema
	Data   Data
}

// SchemaProvider looks up cached schemas by component name.
type SchemaProvider interface {
	Schema(ctx context.Context, name string) (Schema, bool, error)
}

// SchemaProviderFunc adapts a function to SchemaProvider.
type SchemaProviderFunc func(ctx context.Context, name string) (Schema, bool, error)

// Schema implements SchemaProvider.
func (f SchemaProviderFunc) Schema(ctx context.Context, name string) (Schema, bool, error) {
	if f == nil {
		return nil, false, nil
	}
	return f(ctx, name)
}

// DataProvider looks up cached component data by reference.
type DataProvider interface {
	Data(ctx context.Context, ref string) (Data, bool, error)
}

// DataProviderFunc adapts a function to DataProvider.
type DataProviderFunc func(ctx context.Context, ref string) (Data, bool, error)

// Data implements DataProvider.
func (f DataProviderFunc) Data(ctx context.Context, ref string) (Data, bool, error) {
	if f == nil {
		return nil, false, nil
	}
	return f(ctx, ref)
}

// Remote fetches schemas and default data over the network when the caches
// miss. uri is always a component URI without scheme.
type Remote interface {
	GetSchema(ctx context.Context, uri string) (Schema, error)
	GetObject(ctx context.Context, uri string) (Data, error)
}

// Committer persists resolved components. Implementations must tolerate
// concurrent calls.
type Committer interface {
	Commit(ctx context.Context, ref string, data Data) error
}

// CommitterFunc adapts a function to Committer.
type CommitterFunc func(ctx context.Context, ref string, data Data) error

// Commit implements Committer.
func (f CommitterFunc) Commit(ctx context.Context, ref string, data Data) error {
	if f == nil {
		return nil
	}
	return f(ctx, ref, data)
}

// IDGenerator produces collision resistant instance identifiers.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string {
	return f()
}

// Lifecycle transforms component data after acquisition. Render receives the
// output of Save.
type Lifecycle interface {
	Save(ctx context.Context, c Component) (Data, error)
	Render(ctx context.Context, c Component) (Data, error)
}

// LifecycleLoader returns the lifecycle registered for a component name, if
// any.
type LifecycleLoader interface {
	Lifecycle(name string) (Lifecycle, bool)
}

// Notifier receives resolution notifications. *activity.Emitter satisfies it
// through the activity package adapter.
type Notifier interface {
	ComponentResolved(ctx context.Context, c Component) error
}
