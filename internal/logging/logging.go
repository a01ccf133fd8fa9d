// Package logging configures slog for the command line tool.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where and how much to log.
type Options struct {
	Level slog.Level
	// File, when set, receives logs through a rotating writer.
	File string
	// NoColor disables ANSI colors on the console handler.
	NoColor bool
}

// New builds a tint-backed logger. Console output goes to w.
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	if opts.File == "" {
		handler := tint.NewHandler(w, &tint.Options{
			Level:      opts.Level,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		})
		return slog.New(handler), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, err
	}
	lumber := &lumberjack.Logger{
		Filename: opts.File,
		Compress: true,
	}
	handler := tint.NewHandler(lumber, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	})
	return slog.New(handler), lumber, nil
}

// Install makes logger the default and routes the standard log package
// through it, in case a dependency writes there.
func Install(logger *slog.Logger) {
	slog.SetDefault(logger)
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelInfo).Writer())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
