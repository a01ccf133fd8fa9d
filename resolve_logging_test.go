package compose

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiResolveLogger(t *testing.T) {
	var a, b []string
	logger := MultiResolveLogger(
		ResolveLoggerFunc(func(e ResolveLogEvent) { a = append(a, e.Name) }),
		nil,
		ResolveLoggerFunc(func(e ResolveLogEvent) { b = append(b, e.Name) }),
	)
	logger.LogResolution(ResolveLogEvent{Name: "card"})
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected fan-out to both loggers, got %v %v", a, b)
	}
}

func TestSlogResolveLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogResolveLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.LogResolution(ResolveLogEvent{Name: "card", Ref: "r", SchemaSource: SourcePass, DataSource: SourceCache})
	logger.LogResolution(ResolveLogEvent{Name: "hero", Err: errors.New("boom"), CommitErr: errors.New("offline")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "level=DEBUG") || !strings.Contains(lines[0], "schema_source=pass") {
		t.Fatalf("unexpected debug record %q", lines[0])
	}
	if !strings.Contains(lines[1], "level=ERROR") || !strings.Contains(lines[1], "error=boom") || !strings.Contains(lines[1], "commit_error=offline") {
		t.Fatalf("unexpected error record %q", lines[1])
	}
}

func TestResolveLoggerSeesEveryNode(t *testing.T) {
	s := newSite()
	s.cachedData["site.com/components/list"] = Data{"children": []any{
		map[string]any{"_ref": "site.com/components/card/instances/a"},
	}}
	s.remoteData["site.com/components/card/instances/a"] = Data{}

	events := map[string]ResolveLogEvent{}
	logger := ResolveLoggerFunc(func(e ResolveLogEvent) { events[e.Name] = e })
	if _, err := s.composer(WithConcurrency(1), WithResolveLogger(logger)).Resolve(t.Context(), Request{Name: "list"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	list, card := events["list"], events["card"]
	if list.DataSource != SourceCache || list.Depth != 0 {
		t.Fatalf("unexpected list event %+v", list)
	}
	if card.DataSource != SourceRemote || card.Depth != 1 || card.Ref != "site.com/components/card/instances/a" {
		t.Fatalf("unexpected card event %+v", card)
	}
}
