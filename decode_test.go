package compose

import (
	"context"
	"strings"
	"testing"
)

type article struct {
	Ref      string    `json:"_ref"`
	Title    string    `json:"title"`
	Children []section `json:"children"`
}

type section struct {
	Ref  string `json:"_ref"`
	Text string `json:"text"`
}

func TestDecodeResolvedTree(t *testing.T) {
	s := newSite()
	s.remoteData["site.com/components/article"] = Data{
		"title":    "Hello",
		"children": []any{map[string]any{"_ref": "site.com/components/section/instances/a"}},
	}
	s.cachedData["site.com/components/section/instances/a"] = Data{"text": "body"}

	data, err := s.composer().Resolve(context.Background(), Request{Name: "article"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	out, err := Decode[article](data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Ref != "site.com/components/article/instances/1" || out.Title != "Hello" {
		t.Fatalf("unexpected article %+v", out)
	}
	if len(out.Children) != 1 || out.Children[0].Text != "body" || out.Children[0].Ref != "site.com/components/section/instances/a" {
		t.Fatalf("unexpected children %+v", out.Children)
	}

	stripped, err := Decode[article](data, DecodeWithoutRefs())
	if err != nil {
		t.Fatalf("decode without refs: %v", err)
	}
	if stripped.Ref != "" || stripped.Children[0].Ref != "" {
		t.Fatalf("refs should be removed: %+v", stripped)
	}
	if data[RefKey] == nil {
		t.Fatalf("decode must not mutate the resolved data")
	}
}

func TestDecodeStrict(t *testing.T) {
	data := Data{"title": "x", "unexpected": true}
	if _, err := Decode[article](data); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	_, err := Decode[article](data, DecodeStrict())
	if err == nil || !strings.HasPrefix(err.Error(), "compose: decode:") {
		t.Fatalf("expected strict decode error, got %v", err)
	}
}
