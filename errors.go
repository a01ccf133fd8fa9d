package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a cache miss with no remote to fall back on, or a
	// remote that has nothing at the URI.
	ErrNotFound = errors.New("compose: not found")
	// ErrCycle reports a component that references one of its ancestors.
	ErrCycle = errors.New("compose: reference cycle")
	// ErrMaxDepth reports nesting deeper than the configured limit.
	ErrMaxDepth = errors.New("compose: max depth exceeded")
	// ErrInvalidRef reports a reference that does not name a component.
	ErrInvalidRef = errors.New("compose: invalid reference")
	// ErrInvalidRequest reports a request without name or ref.
	ErrInvalidRequest = errors.New("compose: invalid request")
)

// Stage identifies the pipeline step a resolution failed in.
type Stage string

const (
	StageRequest    Stage = "request"
	StageSchema     Stage = "schema"
	StageData       Stage = "data"
	StageReferences Stage = "references"
	StageSave       Stage = "save"
	StageRender     Stage = "render"
)

// ResolveError captures which component failed, where, and why.
type ResolveError struct {
	Name  string
	Ref   string
	Stage Stage
	Err   error
}

func (e *ResolveError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("compose: %s %s stage=%s: %v", describeComponent(e.Name), describeRef(e.Ref), e.Stage, e.Err)
}

func (e *ResolveError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeComponent(name string) string {
	if name == "" {
		return "component=<unknown>"
	}
	return fmt.Sprintf("component=%q", name)
}

func describeRef(ref string) string {
	if ref == "" {
		return "ref=<empty>"
	}
	return fmt.Sprintf("ref=%q", ref)
}

func wrapResolveError(name, ref string, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &ResolveError{
		Name:  name,
		Ref:   ref,
		Stage: stage,
		Err:   err,
	}
}
