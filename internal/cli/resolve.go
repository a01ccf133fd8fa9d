package cli

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/internal/app"
)

type resolveOptions struct {
	query  string
	pretty bool
}

func resolveCmd(globals *globalOptions) *cobra.Command {
	opts := &resolveOptions{}
	command := &cobra.Command{
		Use:   "resolve [requests.json]",
		Short: "Resolve a JSON array of component requests",
		Long: `Reads a JSON array of {"name", "data", "ref"} requests from the given file,
or stdin when no file is given, and prints the resolved components as a JSON array.
Failed requests print as null and make the command exit non-zero.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := readRequests(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			a, cleanup, err := globals.setup(cmd, app.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			return runResolve(cmd, a, requests, opts)
		},
	}
	command.Flags().StringVar(&opts.query, "query", "", "gjson path applied to the output, e.g. '0.children.#._ref'")
	command.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	return command
}

func readRequests(stdin io.Reader, args []string) ([]compose.Request, error) {
	var (
		raw []byte
		err error
	)
	if len(args) == 1 && args[0] != "-" {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}

	var requests []compose.Request
	if err := json.Unmarshal(raw, &requests); err != nil {
		return nil, fmt.Errorf("failed to parse requests: %w", err)
	}
	return requests, nil
}

func runResolve(cmd *cobra.Command, a *app.App, requests []compose.Request, opts *resolveOptions) error {
	results, resolveErr := a.Composer.ResolveAll(cmd.Context(), requests)

	out := make([]compose.Data, len(results))
	for i, result := range results {
		if result.Err != nil {
			a.Logger.Error("request failed", "index", i, "ref", result.Ref, "error", result.Err)
			continue
		}
		out[i] = result.Data
	}

	encoded, err := encode(out, opts.pretty)
	if err != nil {
		return err
	}
	if opts.query != "" {
		value := gjson.GetBytes(encoded, opts.query)
		if !value.Exists() {
			return fmt.Errorf("query %q matched nothing", opts.query)
		}
		encoded = []byte(value.Raw)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(encoded)); err != nil {
		return err
	}

	if resolveErr != nil {
		return ErrFailedRequests
	}
	return nil
}

func encode(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
