package ir

import (
	"errors"
	"testing"
)

func testDoc() *Node {
	return FromKeyVals([]KeyVal{
		{Key: FromString("pipeline"), Val: FromKeyVals([]KeyVal{
			{Key: FromString("stages"), Val: FromSlice([]*Node{
				FromKeyVals([]KeyVal{
					{Key: FromString("identifier"), Val: FromString("s1")},
				}),
				FromKeyVals([]KeyVal{
					{Key: FromString("identifier"), Val: FromString("s2")},
					{Key: FromString("a.b"), Val: FromBool(true)},
				}),
			})},
		})},
	})
}

func TestNode_KPath(t *testing.T) {
	doc := testDoc()
	s2 := Get(doc, "pipeline").Values[0].Values[1]
	if got := s2.KPath(); got != "pipeline.stages[1]" {
		t.Errorf("got %q", got)
	}
	if got := Get(s2, "a.b").KPath(); got != `pipeline.stages[1]."a.b"` {
		t.Errorf("got %q", got)
	}
	if got := doc.KPath(); got != "" {
		t.Errorf("root kpath should be empty, got %q", got)
	}
}

func TestNode_GetKPath(t *testing.T) {
	doc := testDoc()
	for _, n := range []*Node{
		Get(doc, "pipeline").Values[0].Values[0],
		Get(Get(doc, "pipeline").Values[0].Values[1], "a.b"),
	} {
		got, err := doc.GetKPath(n.KPath())
		if err != nil {
			t.Fatalf("GetKPath(%q): %v", n.KPath(), err)
		}
		if got != n {
			t.Errorf("GetKPath(%q) returned a different node", n.KPath())
		}
	}

	if _, err := doc.GetKPath("pipeline.stages[5]"); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
	if _, err := doc.GetKPath("pipeline[0]"); !errors.Is(err, ErrNotArray) {
		t.Errorf("expected ErrNotArray, got %v", err)
	}
	if _, err := doc.GetKPath("pipeline.stages.x"); !errors.Is(err, ErrNotObject) {
		t.Errorf("expected ErrNotObject, got %v", err)
	}
}
