package layering

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	json "github.com/goccy/go-json"
	"pgregory.net/rapid"
)

func TestOverlayFromFixture(t *testing.T) {
	fx := loadOverlayFixture(t, "overlay.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			got := Overlay(tc.Base, tc.Top)
			if !reflect.DeepEqual(tc.Expect, got) {
				t.Errorf("overlay mismatch:\nwant: %#v\n got: %#v", tc.Expect, got)
			}
		})
	}
}

func TestOverlayDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"a": 1}
	top := map[string]any{"b": 2}

	out := Overlay(base, top)
	out["c"] = 3

	if len(base) != 1 || len(top) != 1 {
		t.Fatalf("inputs were mutated: base=%v top=%v", base, top)
	}
}

func TestOverlayProperties(t *testing.T) {
	keys := rapid.SampledFrom([]string{"a", "b", "c", "d", "_ref", "children"})
	layer := rapid.MapOf(keys, rapid.Int())

	rapid.Check(t, func(t *rapid.T) {
		base := toAny(layer.Draw(t, "base"))
		top := toAny(layer.Draw(t, "top"))
		out := Overlay(base, top)

		for key, value := range top {
			if out[key] != value {
				t.Fatalf("key %q: top value %v lost, got %v", key, value, out[key])
			}
		}
		for key, value := range base {
			if _, overridden := top[key]; !overridden && out[key] != value {
				t.Fatalf("key %q: base value %v lost, got %v", key, value, out[key])
			}
		}
		if len(out) > len(base)+len(top) {
			t.Fatalf("overlay invented keys: %v", out)
		}
		if again := Overlay(out, top); !reflect.DeepEqual(again, out) {
			t.Fatalf("overlay is not idempotent: %v vs %v", again, out)
		}
	})
}

func toAny(m map[string]int) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

type named map[string]any

func TestCloneIsDeep(t *testing.T) {
	original := named{
		"children": []any{map[string]any{"_ref": "site.com/components/a"}},
		"meta":     map[string]any{"tags": []string{"x"}},
		"count":    3,
	}

	cloned := Clone(original)
	if !reflect.DeepEqual(original, cloned) {
		t.Fatalf("clone differs:\nwant: %#v\n got: %#v", original, cloned)
	}

	cloned["children"].([]any)[0].(map[string]any)["_ref"] = "changed"
	cloned["meta"].(map[string]any)["tags"].([]string)[0] = "y"
	cloned["count"] = 4

	if original["children"].([]any)[0].(map[string]any)["_ref"] != "site.com/components/a" {
		t.Fatalf("nested map shared with clone")
	}
	if original["meta"].(map[string]any)["tags"].([]string)[0] != "x" {
		t.Fatalf("nested slice shared with clone")
	}
	if original["count"] != 3 {
		t.Fatalf("top-level map shared with clone")
	}
}

func TestCloneNil(t *testing.T) {
	var m map[string]any
	if got := Clone(m); got != nil {
		t.Fatalf("expected nil clone, got %#v", got)
	}
	var p *int
	if got := Clone(p); got != nil {
		t.Fatalf("expected nil pointer clone, got %v", got)
	}
}

type overlayFixture struct {
	Cases []overlayCase `json:"cases"`
}

type overlayCase struct {
	Name   string         `json:"name"`
	Base   map[string]any `json:"base"`
	Top    map[string]any `json:"top"`
	Expect map[string]any `json:"expect"`
}

func loadOverlayFixture(t *testing.T, name string) overlayFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read overlay fixture %q: %v", name, err)
	}
	var fx overlayFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal overlay fixture %q: %v", name, err)
	}
	return fx
}
