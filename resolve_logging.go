package compose

import (
	"context"
	"log/slog"
	"time"
)

// Source identifies where an acquired schema or data value came from.
type Source string

const (
	SourceNone   Source = ""
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
	SourcePass   Source = "pass"
)

// ResolveLogEvent describes one settled node resolution.
type ResolveLogEvent struct {
	Name         string
	Ref          string
	Depth        int
	SchemaSource Source
	DataSource   Source
	Lifecycle    bool
	Duration     time.Duration
	Err          error
	CommitErr    error
}

// ResolveLogger records resolution events.
type ResolveLogger interface {
	LogResolution(ResolveLogEvent)
}

// ResolveLoggerFunc adapts a function to ResolveLogger.
type ResolveLoggerFunc func(ResolveLogEvent)

// LogResolution implements ResolveLogger.
func (f ResolveLoggerFunc) LogResolution(event ResolveLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolveLogger struct{}

func (noopResolveLogger) LogResolution(ResolveLogEvent) {}

// MultiResolveLogger fans events out to every non-nil logger.
func MultiResolveLogger(loggers ...ResolveLogger) ResolveLogger {
	filtered := make([]ResolveLogger, 0, len(loggers))
	for _, logger := range loggers {
		if logger != nil {
			filtered = append(filtered, logger)
		}
	}
	return ResolveLoggerFunc(func(event ResolveLogEvent) {
		for _, logger := range filtered {
			logger.LogResolution(event)
		}
	})
}

// NewSlogResolveLogger writes one debug record per node, or an error record
// when the node failed.
func NewSlogResolveLogger(logger *slog.Logger) ResolveLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return ResolveLoggerFunc(func(event ResolveLogEvent) {
		attrs := []slog.Attr{
			slog.String("component", event.Name),
			slog.String("ref", event.Ref),
			slog.Int("depth", event.Depth),
			slog.String("schema_source", string(event.SchemaSource)),
			slog.String("data_source", string(event.DataSource)),
			slog.Bool("lifecycle", event.Lifecycle),
			slog.Duration("duration", event.Duration),
		}
		if event.CommitErr != nil {
			attrs = append(attrs, slog.Any("commit_error", event.CommitErr))
		}
		if event.Err != nil {
			attrs = append(attrs, slog.Any("error", event.Err))
			logger.LogAttrs(context.Background(), slog.LevelError, "component resolution failed", attrs...)
			return
		}
		logger.LogAttrs(context.Background(), slog.LevelDebug, "component resolved", attrs...)
	})
}
