package compose

import (
	"context"
	"errors"
	"testing"
)

func TestComponentURI(t *testing.T) {
	cases := map[string][2]string{
		"site.com/components/card":    {"site.com", "card"},
		"site.com/components/hero":    {"site.com/", "hero"},
		"unknown/components/card":     {"", "card"},
		"unknown/components/nav":      {"   ", "nav"},
		"a.com/blog/components/entry": {"a.com/blog", "entry"},
	}
	for want, in := range cases {
		if got := ComponentURI(in[0], in[1]); got != want {
			t.Fatalf("ComponentURI(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
	if got := InstanceURI("site.com", "card", "42"); got != "site.com/components/card/instances/42" {
		t.Fatalf("unexpected instance uri %q", got)
	}
}

func TestNameFromRef(t *testing.T) {
	valid := map[string]string{
		"site.com/components/card":                    "card",
		"site.com/components/card/instances/1":        "card",
		"site.com/components/card@published":          "card",
		"site.com/components/card.html":               "card",
		"site.com/components/nested/components/inner": "inner",
		"site.com/components/list/instances/x@latest": "list",
		"/components/bare":                            "bare",
	}
	for ref, want := range valid {
		got, err := NameFromRef(ref)
		if err != nil || got != want {
			t.Fatalf("NameFromRef(%q) = %q, %v; want %q", ref, got, err, want)
		}
	}

	for _, ref := range []string{"", "site.com/card", "site.com/components/", "site.com/components/@v1"} {
		if _, err := NameFromRef(ref); !errors.Is(err, ErrInvalidRef) {
			t.Fatalf("NameFromRef(%q): expected ErrInvalidRef, got %v", ref, err)
		}
	}
}

func TestPrefixContext(t *testing.T) {
	if _, ok := PrefixFromContext(context.Background()); ok {
		t.Fatalf("background context has no prefix")
	}
	ctx := ContextWithPrefix(context.Background(), "tenant.com")
	if prefix, ok := PrefixFromContext(ctx); !ok || prefix != "tenant.com" {
		t.Fatalf("unexpected prefix %q %v", prefix, ok)
	}
}

func TestPrefixFromRef(t *testing.T) {
	valid := map[string]string{
		"site.com/components/card":                    "site.com",
		"other.org/blog/components/entry/instances/1": "other.org/blog",
		"site.com/components/card@published":          "site.com",
	}
	for ref, want := range valid {
		if got, ok := PrefixFromRef(ref); !ok || got != want {
			t.Fatalf("PrefixFromRef(%q) = %q, %v; want %q", ref, got, ok, want)
		}
	}
	for _, ref := range []string{"", "/components/bare", "site.com/card"} {
		if got, ok := PrefixFromRef(ref); ok {
			t.Fatalf("PrefixFromRef(%q) = %q, expected no prefix", ref, got)
		}
	}
}
