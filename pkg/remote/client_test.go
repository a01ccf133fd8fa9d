package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/pkg/remote"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*remote.Client, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := remote.New(remote.Config{Headers: map[string]string{"X-Site": "test"}}, server.Client())
	t.Cleanup(func() { _ = client.Close() })
	return client, strings.TrimPrefix(server.URL, "http://")
}

func TestGetObject(t *testing.T) {
	client, host := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/components/card", r.URL.Path)
		assert.Equal(t, "test", r.Header.Get("X-Site"))
		_, _ = w.Write([]byte(`{"title":"default","children":[{"_ref":"x/components/a"}]}`))
	})

	data, err := client.GetObject(context.Background(), host+"/components/card")
	require.NoError(t, err)
	assert.Equal(t, "default", data["title"])
	ref, ok := compose.MarkerOf(data["children"].([]any)[0])
	assert.True(t, ok)
	assert.Equal(t, "x/components/a", ref)
}

func TestGetSchemaAppendsSchemaPath(t *testing.T) {
	var hits atomic.Int32
	client, host := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/components/card/schema", r.URL.Path)
		_, _ = w.Write([]byte(`{"title":{"type":"string"}}`))
	})

	schema, err := client.GetSchema(context.Background(), host+"/components/card")
	require.NoError(t, err)
	assert.Contains(t, schema, "title")
	assert.EqualValues(t, 1, hits.Load())
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	client, host := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetObject(context.Background(), host+"/components/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, compose.ErrNotFound)

	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestServerErrorIsNotNotFound(t *testing.T) {
	client, host := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetSchema(context.Background(), host+"/components/card")
	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.False(t, errors.Is(err, compose.ErrNotFound))
}

func TestMalformedBody(t *testing.T) {
	client, host := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.GetObject(context.Background(), host+"/components/card")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote: decode")
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	client, host := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.GetObject(ctx, host+"/components/slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestURL(t *testing.T) {
	client := remote.New(remote.Config{Scheme: "https://"}, nil)
	defer client.Close()
	assert.Equal(t, "https://site.com/components/card", client.URL("site.com/components/card"))
}
