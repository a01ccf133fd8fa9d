package activity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	compose "github.com/goliatone/go-compose"
)

// DefaultChannel is applied to events that do not name one.
const DefaultChannel = "components"

// Config controls emission defaults.
type Config struct {
	Enabled  bool
	Channel  string
	ActorID  string
	TenantID string
	Logger   *slog.Logger
	// Now stamps events; time.Now when nil.
	Now func() time.Time
}

// Emitter fans out events to hooks while applying defaults. It satisfies
// compose.Notifier.
type Emitter struct {
	hooks    Hooks
	enabled  bool
	channel  string
	actorID  string
	tenantID string
	logger   *slog.Logger
	now      func() time.Time
}

var _ compose.Notifier = (*Emitter)(nil)

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	var kept Hooks
	for _, hook := range hooks {
		if hook != nil {
			kept = append(kept, hook)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Emitter{
		hooks:    kept,
		enabled:  cfg.Enabled && len(kept) > 0,
		channel:  channel,
		actorID:  strings.TrimSpace(cfg.ActorID),
		tenantID: strings.TrimSpace(cfg.TenantID),
		logger:   logger,
		now:      now,
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards the event to all hooks, filling channel, actor and tenant
// defaults.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.actorID
	}
	if strings.TrimSpace(event.TenantID) == "" {
		event.TenantID = e.tenantID
	}
	return e.hooks.Notify(ctx, event)
}

// ComponentResolved implements compose.Notifier.
func (e *Emitter) ComponentResolved(ctx context.Context, c compose.Component) error {
	return e.Emit(ctx, Resolved(c, e.now()))
}

// Committer wraps next so every successful commit emits a committed event.
// Emission failures are not reported as commit failures.
func (e *Emitter) Committer(next compose.Committer) compose.Committer {
	return compose.CommitterFunc(func(ctx context.Context, ref string, data compose.Data) error {
		if err := next.Commit(ctx, ref, data); err != nil {
			return err
		}
		if err := e.Emit(ctx, Committed(ref, data, e.now())); err != nil {
			e.logger.Debug("component activity failed", "ref", ref, "error", err)
		}
		return nil
	})
}
