package compose

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		raw    any
		expect Value
	}{
		{name: "string", raw: "x", expect: Scalar{V: "x"}},
		{name: "nil", raw: nil, expect: Scalar{V: nil}},
		{name: "marker", raw: map[string]any{"_ref": "site.com/components/a"}, expect: Marker{Ref: "site.com/components/a"}},
		{name: "data marker", raw: Data{"_ref": "site.com/components/a"}, expect: Marker{Ref: "site.com/components/a"}},
		{name: "empty ref", raw: map[string]any{"_ref": ""}, expect: Object{"_ref": ""}},
		{name: "non string ref", raw: map[string]any{"_ref": 7}, expect: Object{"_ref": 7}},
		{name: "ref with siblings", raw: map[string]any{"_ref": "r", "x": 1}, expect: Object{"_ref": "r", "x": 1}},
		{name: "empty object", raw: map[string]any{}, expect: Object{}},
		{
			name:   "collection",
			raw:    []any{"a", map[string]any{"_ref": "r"}, []any{1}},
			expect: Collection{Scalar{V: "a"}, Marker{Ref: "r"}, Collection{Scalar{V: 1}}},
		},
		{
			name:   "typed map slice",
			raw:    []map[string]any{{"_ref": "r"}},
			expect: Collection{Marker{Ref: "r"}},
		},
		{name: "string slice is scalar", raw: []string{"a"}, expect: Scalar{V: []string{"a"}}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.raw)
			if !reflect.DeepEqual(tc.expect, got) {
				t.Fatalf("classify mismatch:\nwant: %#v\n got: %#v", tc.expect, got)
			}
		})
	}
}

func TestMarkerOf(t *testing.T) {
	if ref, ok := MarkerOf(map[string]any{"_ref": "r"}); !ok || ref != "r" {
		t.Fatalf("expected marker r, got %q %v", ref, ok)
	}
	if _, ok := MarkerOf(map[string]any{"_ref": "r", "alt": "x"}); ok {
		t.Fatalf("objects with extra keys are not markers")
	}
	if _, ok := MarkerOf("r"); ok {
		t.Fatalf("strings are not markers")
	}
}

func TestUnwrapRestoresRawShape(t *testing.T) {
	raw := []any{"a", map[string]any{"_ref": "r"}, map[string]any{"x": 1}, []any{2.5}}
	if got := Unwrap(Classify(raw)); !reflect.DeepEqual(raw, got) {
		t.Fatalf("unwrap mismatch:\nwant: %#v\n got: %#v", raw, got)
	}
}
