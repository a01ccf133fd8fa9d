// Package app wires a Composer and its collaborators from configuration.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/internal/config"
	"github.com/goliatone/go-compose/pkg/activity"
	"github.com/goliatone/go-compose/pkg/metrics"
	"github.com/goliatone/go-compose/pkg/remote"
	"github.com/goliatone/go-compose/pkg/store"
	"github.com/goliatone/go-compose/pkg/store/sqlite"
)

// App holds a configured Composer and the resources it owns.
type App struct {
	Composer   *compose.Composer
	Metrics    *metrics.Collector
	Components *store.Components
	Schemas    *store.Schemas
	Logger     *slog.Logger

	closers []io.Closer
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	Remote compose.Remote
	Hooks  activity.Hooks
	Extra  []compose.Option
}

// New builds an App from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Metrics: metrics.NewCollector(), Logger: logger}

	if cfg.Store.Path != "" {
		db, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.Store.Path, Logger: logger})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		a.Components = store.NewComponents(db.Components())
		a.Schemas = store.NewSchemas(db.Schemas())
	} else {
		a.Components = store.NewComponents(nil)
		a.Schemas = store.NewSchemas(nil)
	}

	api := opts.Remote
	if api == nil {
		client := remote.New(remote.Config{
			Scheme:  cfg.Remote.Scheme,
			Timeout: cfg.RemoteTimeout(),
			Headers: cfg.Remote.Headers,
		}, nil)
		a.closers = append(a.closers, client)
		api = client
	}

	lifecycles, err := cfg.BuildLifecycles()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	hooks := append(activity.Hooks{logHook(logger)}, opts.Hooks...)
	emitter := activity.NewEmitter(hooks, activity.Config{Enabled: true, Logger: logger})

	options := append(cfg.ComposerOptions(),
		compose.WithSchemaProvider(a.Schemas),
		compose.WithDataProvider(a.Components),
		compose.WithRemote(a.Schemas.Through(api)),
		compose.WithCommitter(emitter.Committer(a.Components)),
		compose.WithLifecycles(lifecycles),
		compose.WithNotifier(emitter),
		compose.WithLogger(logger),
		compose.WithResolveLogger(compose.MultiResolveLogger(compose.NewSlogResolveLogger(logger), a.Metrics)),
	)
	options = append(options, opts.Extra...)
	a.Composer = compose.New(options...)
	return a, nil
}

// Close releases the store and remote client.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func logHook(logger *slog.Logger) activity.Hook {
	return activity.HookFunc(func(ctx context.Context, event activity.Event) error {
		logger.DebugContext(ctx, "component activity",
			"verb", event.Verb,
			"component", event.Component,
			"ref", event.Ref,
			"channel", event.Channel)
		return nil
	})
}
