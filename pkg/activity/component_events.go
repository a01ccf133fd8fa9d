package activity

import (
	"maps"
	"slices"
	"time"

	compose "github.com/goliatone/go-compose"
)

const (
	VerbComponentResolved  = "component.resolved"
	VerbComponentCommitted = "component.committed"
)

// Resolved builds the event for a component that finished resolving.
func Resolved(c compose.Component, at time.Time) Event {
	return componentEvent(VerbComponentResolved, c.Name, c.Ref, c.Data, at)
}

// Committed builds the event for a component written to the store. The
// component name is parsed from ref when possible.
func Committed(ref string, data compose.Data, at time.Time) Event {
	name, _ := compose.NameFromRef(ref)
	return componentEvent(VerbComponentCommitted, name, ref, data, at)
}

func componentEvent(verb, name, ref string, data compose.Data, at time.Time) Event {
	var fields []string
	if len(data) > 0 {
		fields = slices.Sorted(maps.Keys(data))
	}
	return Event{
		Verb:      verb,
		Component: name,
		Ref:       ref,
		Fields:    fields,
		At:        at,
	}
}
