package compose

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-compose/layering"
	"github.com/sourcegraph/conc/iter"
)

// Composer turns component requests into hydrated component trees.
type Composer struct {
	cfg config
}

// New constructs a Composer. Collaborators that are not configured behave as
// permanent cache misses (providers), no-ops (committer, notifier) or absent
// lifecycles.
func New(opts ...Option) *Composer {
	return &Composer{cfg: applyOptions(opts)}
}

// node is one unit of work in the pipeline. lookup is the key used against
// the data cache and remote.
type node struct {
	name   string
	ref    string
	lookup string
	inline Data
}

// sitePrefix is the prefix of the node's ref, or fallback when the ref has
// none.
func (n node) sitePrefix(fallback string) string {
	if prefix, ok := PrefixFromRef(n.ref); ok {
		return prefix
	}
	return fallback
}

// ResolveAll resolves every request concurrently and returns one slot per
// request in input order. A failing request does not affect its siblings; the
// returned error joins the errors of all failed slots.
func (c *Composer) ResolveAll(ctx context.Context, requests []Request) ([]Resolved, error) {
	if len(requests) == 0 {
		return []Resolved{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p := newPass(c.prefix(ctx))
	mapper := iter.Mapper[Request, Resolved]{MaxGoroutines: c.cfg.concurrency}
	results := mapper.Map(requests, func(req *Request) Resolved {
		n, err := c.nodeFor(p, *req)
		if err != nil {
			return Resolved{Ref: req.Ref, Err: err}
		}
		data, err := c.resolveNode(ctx, p, nil, n)
		if err != nil {
			return Resolved{Ref: n.ref, Err: err}
		}
		return Resolved{Ref: n.ref, Data: data}
	})

	var errs []error
	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}
	return results, errors.Join(errs...)
}

// Resolve resolves a single request.
func (c *Composer) Resolve(ctx context.Context, req Request) (Data, error) {
	results, err := c.ResolveAll(ctx, []Request{req})
	if err != nil {
		return nil, err
	}
	return results[0].Data, nil
}

func (c *Composer) prefix(ctx context.Context) string {
	if prefix, ok := PrefixFromContext(ctx); ok {
		return prefix
	}
	return c.cfg.prefix
}

func (c *Composer) nodeFor(p *pass, req Request) (node, error) {
	if req.Name == "" && req.Ref == "" {
		return node{}, wrapResolveError("", "", StageRequest, fmt.Errorf("%w: name or ref is required", ErrInvalidRequest))
	}
	if req.Ref != "" {
		name := req.Name
		if name == "" {
			parsed, err := NameFromRef(req.Ref)
			if err != nil {
				return node{}, wrapResolveError("", req.Ref, StageRequest, err)
			}
			name = parsed
		}
		return node{name: name, ref: req.Ref, lookup: req.Ref, inline: req.Data}, nil
	}
	return node{
		name:   req.Name,
		ref:    InstanceURI(p.prefix, req.Name, c.cfg.ids.NewID()),
		lookup: ComponentURI(p.prefix, req.Name),
		inline: req.Data,
	}, nil
}

// resolveNode runs the full pipeline for one component: schema, data, inline
// overlay, child references, lifecycle, commit.
func (c *Composer) resolveNode(ctx context.Context, p *pass, parent *trail, n node) (Data, error) {
	start := time.Now()
	event := ResolveLogEvent{Name: n.name, Ref: n.ref}
	data, err := c.runPipeline(ctx, p, parent, n, &event)
	event.Duration = time.Since(start)
	event.Err = err
	c.cfg.resolveLog.LogResolution(event)
	return data, err
}

func (c *Composer) runPipeline(ctx context.Context, p *pass, parent *trail, n node, event *ResolveLogEvent) (Data, error) {
	if parent.contains(n.ref) {
		return nil, wrapResolveError(n.name, n.ref, StageReferences, ErrCycle)
	}
	path := parent.push(n.ref)
	event.Depth = path.depth
	if path.depth > c.cfg.maxDepth {
		return nil, wrapResolveError(n.name, n.ref, StageReferences, fmt.Errorf("%w: depth %d > %d", ErrMaxDepth, path.depth, c.cfg.maxDepth))
	}

	schemaURI := ComponentURI(n.sitePrefix(p.prefix), n.name)
	schema, source, err := p.schema(schemaURI, func() (Schema, Source, error) {
		return c.acquireSchema(ctx, schemaURI, n.name)
	})
	event.SchemaSource = source
	if err != nil {
		return nil, wrapResolveError(n.name, n.ref, StageSchema, err)
	}

	acquired, source, err := c.acquireData(ctx, n.lookup)
	event.DataSource = source
	if err != nil {
		return nil, wrapResolveError(n.name, n.ref, StageData, err)
	}

	data := layering.Overlay(layering.Clone(acquired), n.inline)

	refs, err := c.resolveReferences(ctx, p, path, data)
	if err != nil {
		return nil, wrapResolveError(n.name, n.ref, StageReferences, err)
	}

	if c.cfg.lifecycles != nil {
		if lifecycle, ok := c.cfg.lifecycles.Lifecycle(n.name); ok && lifecycle != nil {
			event.Lifecycle = true
			data, err = c.runLifecycle(ctx, lifecycle, Component{Name: n.name, Ref: n.ref, Schema: schema, Data: data})
			if err != nil {
				return nil, err
			}
		}
	}

	if c.cfg.committer != nil {
		if err := c.cfg.committer.Commit(ctx, n.ref, dehydrate(data, refs)); err != nil {
			event.CommitErr = err
			c.cfg.logger.Warn("component commit failed", "component", n.name, "ref", n.ref, "error", err)
		}
	}

	data = layering.Overlay(data, Data{RefKey: n.ref})

	if c.cfg.notifier != nil {
		component := Component{Name: n.name, Ref: n.ref, Schema: schema, Data: data}
		if err := c.cfg.notifier.ComponentResolved(ctx, component); err != nil {
			c.cfg.logger.Debug("component notification failed", "component", n.name, "ref", n.ref, "error", err)
		}
	}
	return data, nil
}

func (c *Composer) acquireSchema(ctx context.Context, uri, name string) (Schema, Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, SourceNone, err
	}
	if c.cfg.schemas != nil {
		schema, ok, err := c.cfg.schemas.Schema(ctx, name)
		if err != nil {
			return nil, SourceCache, fmt.Errorf("schema cache: %w", err)
		}
		if ok && schema != nil {
			return schema, SourceCache, nil
		}
	}
	if c.cfg.remote == nil {
		return nil, SourceNone, fmt.Errorf("%w: schema for %q", ErrNotFound, uri)
	}
	if err := ctx.Err(); err != nil {
		return nil, SourceNone, err
	}
	schema, err := c.cfg.remote.GetSchema(ctx, uri)
	if err != nil {
		return nil, SourceRemote, fmt.Errorf("remote schema %q: %w", uri, err)
	}
	if schema == nil {
		schema = Schema{}
	}
	return schema, SourceRemote, nil
}

func (c *Composer) acquireData(ctx context.Context, key string) (Data, Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, SourceNone, err
	}
	if c.cfg.data != nil {
		data, ok, err := c.cfg.data.Data(ctx, key)
		if err != nil {
			return nil, SourceCache, fmt.Errorf("data cache: %w", err)
		}
		if ok && data != nil {
			return data, SourceCache, nil
		}
	}
	if c.cfg.remote == nil {
		return nil, SourceNone, fmt.Errorf("%w: data for %q", ErrNotFound, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, SourceNone, err
	}
	data, err := c.cfg.remote.GetObject(ctx, key)
	if err != nil {
		return nil, SourceRemote, fmt.Errorf("remote object %q: %w", key, err)
	}
	if data == nil {
		data = Data{}
	}
	return data, SourceRemote, nil
}

func (c *Composer) runLifecycle(ctx context.Context, lifecycle Lifecycle, component Component) (Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapResolveError(component.Name, component.Ref, StageSave, err)
	}
	saved, err := lifecycle.Save(ctx, component)
	if err != nil {
		return nil, wrapResolveError(component.Name, component.Ref, StageSave, err)
	}
	if saved == nil {
		saved = Data{}
	}

	component.Data = saved
	if err := ctx.Err(); err != nil {
		return nil, wrapResolveError(component.Name, component.Ref, StageRender, err)
	}
	rendered, err := lifecycle.Render(ctx, component)
	if err != nil {
		return nil, wrapResolveError(component.Name, component.Ref, StageRender, err)
	}
	if rendered == nil {
		rendered = Data{}
	}
	return rendered, nil
}
