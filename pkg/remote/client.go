// Package remote fetches component schemas and default data from the site API.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	compose "github.com/goliatone/go-compose"
	"resty.dev/v3"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config describes how component URIs are turned into requests.
type Config struct {
	// Scheme is prepended to every URI, "http" when empty.
	Scheme  string            `yaml:"scheme"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Is makes a 404 match compose.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == compose.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client implements compose.Remote over HTTP.
type Client struct {
	scheme string
	resty  *resty.Client
}

var _ compose.Remote = (*Client)(nil)

// New builds a client. A nil net selects resty's default transport.
func New(cfg Config, net *http.Client) *Client {
	client := resty.New()
	if net != nil {
		client = resty.NewWithClient(net)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	if len(cfg.Headers) > 0 {
		client.SetHeaders(cfg.Headers)
	}

	scheme := strings.TrimSuffix(cfg.Scheme, "://")
	if scheme == "" {
		scheme = "http"
	}
	return &Client{scheme: scheme, resty: client}
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.resty.Close()
}

// GetObject fetches the default data stored at uri.
func (c *Client) GetObject(ctx context.Context, uri string) (compose.Data, error) {
	var data compose.Data
	if err := c.get(ctx, uri, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetSchema fetches the schema of the component at uri.
func (c *Client) GetSchema(ctx context.Context, uri string) (compose.Schema, error) {
	var schema compose.Schema
	if err := c.get(ctx, strings.TrimSuffix(uri, "/")+"/schema", &schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// URL returns the absolute URL requested for uri.
func (c *Client) URL(uri string) string {
	return c.scheme + "://" + strings.TrimPrefix(uri, "/")
}

func (c *Client) get(ctx context.Context, uri string, out any) error {
	url := c.URL(uri)
	resp, err := c.resty.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return fmt.Errorf("remote: GET %s: %w", url, errors.Join(ctxErr, err))
		}
		return fmt.Errorf("remote: GET %s: %w", url, err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s: %w", url, err)
	}
	return nil
}
