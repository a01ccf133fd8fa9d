package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/internal/app"
)

const (
	ResolveRoute = "/api/v1/resolve"
	HealthRoute  = "/api/v1/health"
	MetricsRoute = "/metrics"
)

type serveOptions struct {
	addr string
}

func serveCmd(globals *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	command := &cobra.Command{
		Use:   "serve",
		Short: "Serve component resolution over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := globals.setup(cmd, app.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			e := newServer(a)
			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("listening", "addr", opts.addr)
				errCh <- e.Start(opts.addr)
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.Logger.Info("shutting down")
			return e.Shutdown(shutdownCtx)
		},
	}
	command.Flags().StringVar(&opts.addr, "addr", ":8080", "Listen address")
	return command
}

// resolveResult is one slot of a resolve response.
type resolveResult struct {
	Ref   string       `json:"ref,omitempty"`
	Data  compose.Data `json:"data,omitempty"`
	Error string       `json:"error,omitempty"`
}

func newServer(a *app.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.POST(ResolveRoute, func(c echo.Context) error {
		var requests []compose.Request
		if err := c.Bind(&requests); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON array of requests")
		}
		results, err := a.Composer.ResolveAll(c.Request().Context(), requests)
		out := make([]resolveResult, len(results))
		for i, result := range results {
			out[i] = resolveResult{Ref: result.Ref, Data: result.Data}
			if result.Err != nil {
				out[i].Error = result.Err.Error()
			}
		}
		status := http.StatusOK
		if err != nil {
			status = http.StatusMultiStatus
		}
		return c.JSON(status, out)
	})
	e.GET(HealthRoute, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET(MetricsRoute, echo.WrapHandler(a.Metrics.Handler()))
	return e
}
