package kpath

import (
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []string{
		"a",
		"a.b",
		"a[0]",
		"a[0][1]",
		"[2].x",
		`a."x.y".b`,
		`"with space"`,
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			p, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q): %v", s, err)
			}
			if got := p.String(); got != s {
				t.Errorf("String() = %q, want %q", got, s)
			}
		})
	}
}

func TestParseRoot(t *testing.T) {
	p, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("expected nil root path, got %v", p)
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{".a", "a[", "a[x]", "a..b", `"open`} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestParseSegments(t *testing.T) {
	p, err := Parse("stages[1].stage")
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 segments, got %d", p.Len())
	}
	if p.Field == nil || *p.Field != "stages" {
		t.Errorf("bad first segment %s", p.SegmentString())
	}
	if p.Next.Index == nil || *p.Next.Index != 1 {
		t.Errorf("bad second segment %s", p.Next.SegmentString())
	}
	if last := p.Last(); last.SegmentString() != "stage" {
		t.Errorf("bad last segment %s", last.SegmentString())
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		prefix, suffix, want string
	}{
		{"a", "b.c", "a.b.c"},
		{"a", "[0]", "a[0]"},
		{"", "b", "b"},
		{"a", "", "a"},
	}
	for _, tt := range tests {
		if got := Join(tt.prefix, tt.suffix); got != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.prefix, tt.suffix, got, tt.want)
		}
	}
}

func TestAppend(t *testing.T) {
	var p *KPath
	p = p.AppendField("a").AppendIndex(3).AppendField("b")
	if got := p.String(); got != "a[3].b" {
		t.Errorf("got %q", got)
	}
}
