package compose

import (
	"log/slog"

	"github.com/segmentio/ksuid"
)

// DefaultMaxDepth bounds reference nesting when WithMaxDepth is not used.
const DefaultMaxDepth = 32

// Option configures a Composer.
type Option func(*config)

type config struct {
	prefix      string
	schemas     SchemaProvider
	data        DataProvider
	remote      Remote
	committer   Committer
	ids         IDGenerator
	lifecycles  LifecycleLoader
	notifier    Notifier
	logger      *slog.Logger
	resolveLog  ResolveLogger
	maxDepth    int
	concurrency int
}

func applyOptions(opts []Option) config {
	cfg := config{
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.ids == nil {
		cfg.ids = IDGeneratorFunc(func() string { return ksuid.New().String() })
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.resolveLog == nil {
		cfg.resolveLog = noopResolveLogger{}
	}
	return cfg
}

// WithPrefix sets the site prefix used to build component URIs.
func WithPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.prefix = prefix
	}
}

// WithSchemaProvider configures the schema cache.
func WithSchemaProvider(provider SchemaProvider) Option {
	return func(cfg *config) {
		cfg.schemas = provider
	}
}

// WithDataProvider configures the component data cache.
func WithDataProvider(provider DataProvider) Option {
	return func(cfg *config) {
		cfg.data = provider
	}
}

// WithRemote configures the network fallback for schema and data misses.
func WithRemote(remote Remote) Option {
	return func(cfg *config) {
		cfg.remote = remote
	}
}

// WithCommitter configures where resolved components are persisted.
func WithCommitter(committer Committer) Option {
	return func(cfg *config) {
		cfg.committer = committer
	}
}

// WithIDGenerator replaces the default ksuid instance identifiers.
func WithIDGenerator(ids IDGenerator) Option {
	return func(cfg *config) {
		cfg.ids = ids
	}
}

// WithLifecycles configures the lifecycle lookup.
func WithLifecycles(loader LifecycleLoader) Option {
	return func(cfg *config) {
		cfg.lifecycles = loader
	}
}

// WithNotifier attaches a notifier called once per resolved node.
func WithNotifier(notifier Notifier) Option {
	return func(cfg *config) {
		cfg.notifier = notifier
	}
}

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithResolveLogger attaches per-node telemetry.
func WithResolveLogger(logger ResolveLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.resolveLog = noopResolveLogger{}
			return
		}
		cfg.resolveLog = logger
	}
}

// WithMaxDepth bounds reference nesting. Values below one keep the default.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// WithConcurrency bounds the goroutines used by each fan-out. Zero uses
// GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.concurrency = n
		}
	}
}
