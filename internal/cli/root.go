// Package cli implements the compose command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-compose/internal/app"
	"github.com/goliatone/go-compose/internal/config"
	"github.com/goliatone/go-compose/internal/logging"
)

// ErrFailedRequests is returned when at least one request could not be
// resolved. The details have already been logged.
var ErrFailedRequests = errors.New("one or more components failed to resolve")

type globalOptions struct {
	configFile string
	prefix     string
	verbose    bool
}

// Root builds the command tree.
func Root() *cobra.Command {
	globals := &globalOptions{}
	root := &cobra.Command{
		Use:           "compose",
		Short:         "Resolve component requests into composed component trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&globals.configFile, "config", config.DefaultFile, "Path to config file")
	root.PersistentFlags().StringVar(&globals.prefix, "prefix", "", "Site prefix, overrides site.prefix")
	root.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(resolveCmd(globals), serveCmd(globals))
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := Root()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrFailedRequests) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

// setup loads configuration, installs logging and wires the App.
func (g *globalOptions) setup(cmd *cobra.Command, appOpts app.Options) (*app.App, func(), error) {
	cfg, err := config.LoadOptional(g.configFile)
	if err != nil {
		return nil, nil, err
	}
	if g.prefix != "" {
		cfg.Site.Prefix = g.prefix
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	if g.verbose {
		level = slog.LevelDebug
	}
	logger, logCloser, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   level,
		File:    cfg.Log.File,
		NoColor: !isTerminal(cmd.ErrOrStderr()),
	})
	if err != nil {
		return nil, nil, err
	}
	logging.Install(logger)

	a, err := app.New(cmd.Context(), cfg, logger, appOpts)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to release resources", "error", err)
		}
		_ = logCloser.Close()
	}
	return a, cleanup, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
