package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/internal/config"
	"github.com/goliatone/go-compose/pkg/activity"
)

type fakeRemote struct {
	schemas int
}

func (r *fakeRemote) GetSchema(context.Context, string) (compose.Schema, error) {
	r.schemas++
	return compose.Schema{"title": "string"}, nil
}

func (r *fakeRemote) GetObject(_ context.Context, uri string) (compose.Data, error) {
	if uri == "site.com/components/card" {
		return compose.Data{"title": "hello"}, nil
	}
	return nil, compose.ErrNotFound
}

func TestNewWiresCollaborators(t *testing.T) {
	cfg, err := config.Parse([]byte(`
site:
  prefix: site.com
resolver:
  ids: compact
lifecycles:
  card:
    save:
      - field: title
        expr: upper(title)
`))
	require.NoError(t, err)

	api := &fakeRemote{}
	capture := &activity.CaptureHook{}
	a, err := New(context.Background(), cfg, nil, Options{Remote: api, Hooks: activity.Hooks{capture}})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	data, err := a.Composer.Resolve(context.Background(), compose.Request{Name: "card"})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", data["title"])

	ref, _ := data[compose.RefKey].(string)
	stored, ok, err := a.Components.Data(context.Background(), ref)
	require.NoError(t, err)
	require.True(t, ok, "resolved component should be committed")
	assert.Equal(t, "HELLO", stored["title"])
	assert.NotContains(t, stored, compose.RefKey)

	schema, ok, err := a.Schemas.Schema(context.Background(), "card")
	require.NoError(t, err)
	require.True(t, ok, "remote schema should be remembered")
	assert.Equal(t, "string", schema["title"])

	_, err = a.Composer.Resolve(context.Background(), compose.Request{Name: "card"})
	require.NoError(t, err)
	assert.Equal(t, 1, api.schemas, "second pass should hit the schema store")

	verbs := map[string]int{}
	for _, event := range capture.Events() {
		verbs[event.Verb]++
	}
	assert.Equal(t, 2, verbs[activity.VerbComponentCommitted])
	assert.Equal(t, 2, verbs[activity.VerbComponentResolved])
}

func TestNewRejectsBadLifecycle(t *testing.T) {
	cfg, err := config.Parse([]byte(`
lifecycles:
  card:
    engine: lua
`))
	require.NoError(t, err)

	_, err = New(context.Background(), cfg, nil, Options{Remote: &fakeRemote{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lifecycles.card")
}

func TestResolvedParentsKeepChildMarkers(t *testing.T) {
	cfg, err := config.Parse([]byte("site:\n  prefix: site.com\n"))
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, nil, Options{Remote: &fakeRemote{}})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	ctx := context.Background()
	page := "site.com/components/page/instances/1"
	leaf := "site.com/components/leaf/instances/1"
	require.NoError(t, a.Components.Commit(ctx, page, compose.Data{
		"children": []any{map[string]any{compose.RefKey: leaf}},
	}))
	require.NoError(t, a.Components.Commit(ctx, leaf, compose.Data{"v": 1}))

	first, err := a.Composer.Resolve(ctx, compose.Request{Ref: page})
	require.NoError(t, err)
	assert.Equal(t, 1, first["children"].([]any)[0].(compose.Data)["v"])

	stored, ok, err := a.Components.Data(ctx, page)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{map[string]any{compose.RefKey: leaf}}, stored["children"])

	require.NoError(t, a.Components.Commit(ctx, leaf, compose.Data{"v": 2}))
	second, err := a.Composer.Resolve(ctx, compose.Request{Ref: page})
	require.NoError(t, err)
	assert.Equal(t, 2, second["children"].([]any)[0].(compose.Data)["v"])
}
