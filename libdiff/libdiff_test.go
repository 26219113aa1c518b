package libdiff

import (
	"strings"
	"testing"

	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/parse"
)

func mustParse(t *testing.T, doc string) *ir.Node {
	t.Helper()
	n, err := parse.ParseString(doc)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

const before = `
stage:
  identifier: s1
  template:
    templateRef: t
    templateInputs:
      script: echo hi
      timeout: 1m
`

const after = `
stage:
  identifier: s1
  template:
    templateRef: t
    templateInputs:
      script: echo hi
      shell: <+input>
`

func TestLines(t *testing.T) {
	d, err := Lines(mustParse(t, before), mustParse(t, after), nil)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(d, "\n"), "\n")
	var added, removed []string
	for _, ln := range lines {
		switch {
		case strings.HasPrefix(ln, "+ "):
			added = append(added, strings.TrimSpace(ln[2:]))
		case strings.HasPrefix(ln, "- "):
			removed = append(removed, strings.TrimSpace(ln[2:]))
		case !strings.HasPrefix(ln, "  "):
			t.Errorf("unprefixed line %q", ln)
		}
	}
	if len(added) != 1 || !strings.HasPrefix(added[0], "shell:") {
		t.Errorf("added %q", added)
	}
	if len(removed) != 1 || removed[0] != "timeout: 1m" {
		t.Errorf("removed %q", removed)
	}
}

func TestLinesEqual(t *testing.T) {
	d, err := Lines(mustParse(t, before), mustParse(t, before), NewColors())
	if err != nil {
		t.Fatal(err)
	}
	if d != "" {
		t.Errorf("expected no diff, got %q", d)
	}
}

func TestLineDiff(t *testing.T) {
	ls := LineDiff("a\nb\nc\n", "a\nc\nd\n")
	var b strings.Builder
	for _, l := range ls {
		b.WriteString(l.Op.String()[:1])
		b.WriteString(l.Text)
		b.WriteByte(' ')
	}
	if got, want := b.String(), "Ea Db Ec Id "; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestMergePatch(t *testing.T) {
	from, to := mustParse(t, before), mustParse(t, after)
	p, err := MergePatch(from, to)
	if err != nil {
		t.Fatal(err)
	}
	want := mustParse(t, `
stage:
  template:
    templateInputs:
      timeout: null
      shell: <+input>
`)
	if !ir.Equal(p, want) {
		t.Errorf("unexpected patch %v", p)
	}
	res, err := ApplyMergePatch(from, p)
	if err != nil {
		t.Fatal(err)
	}
	if !ir.Equal(res, to) {
		t.Error("applying the patch did not yield the target document")
	}
}
