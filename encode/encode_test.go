package encode

import (
	"bytes"
	"math"
	"testing"

	"github.com/stagecraft/tplmerge/format"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/parse"
)

func TestEncodeYAML(t *testing.T) {
	n, err := parse.ParseString("a: 1\nb:\n  - x\n  - y: z\n")
	if err != nil {
		t.Fatal(err)
	}
	got, err := String(n)
	if err != nil {
		t.Fatal(err)
	}
	// y is a YAML 1.1 boolean and stays quoted
	want := "a: 1\nb:\n  - x\n  - \"y\": z\n"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestEncodeBoolLikeKeys(t *testing.T) {
	n, err := parse.ParseString("y: z\n\"n\": \"yes\"\non: \"off\"\n")
	if err != nil {
		t.Fatal(err)
	}
	got, err := String(n)
	if err != nil {
		t.Fatal(err)
	}
	back, err := parse.ParseString(got)
	if err != nil {
		t.Fatalf("reparsing %q: %v", got, err)
	}
	if !ir.Equal(n, back) {
		t.Fatalf("round trip changed\n%s", got)
	}
	for i, k := range []string{"y", "n"} {
		f := back.Fields[i]
		if f.Type != ir.StringType || f.String != k {
			t.Errorf("key %d: got %s %q, want string %q", i, f.Type, f.String, k)
		}
		if v := back.Values[i]; v.Type != ir.StringType {
			t.Errorf("value of %q is %s", k, v.Type)
		}
	}
}

func TestEncodeJSON(t *testing.T) {
	n, err := parse.ParseString(`{"a": 1, "b": ["x"], "c": {}}`, parse.ParseJSON())
	if err != nil {
		t.Fatal(err)
	}
	buf := bytes.NewBuffer(nil)
	if err := Encode(n, buf, EncodeFormat(format.JSONFormat)); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"a\": 1,\n  \"b\": [\n    \"x\"\n  ],\n  \"c\": {}\n}\n"
	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	docs := []string{
		"pipeline:\n  identifier: p\n  stages:\n    - stage:\n        identifier: s1\n        template:\n          templateRef: t1\n          templateInputs:\n            spec:\n              script: <+input>\n",
		"s: \"123\"\nb: \"true\"\nn: \"null\"\ncolon: \"a: b\"\nmulti: \"line1\\nline2\"\nempty: \"\"\n",
		"list: []\nobj: {}\nnested:\n  - - 1\n    - 2\n  - []\n",
		"f: 1.5\nneg: -3\nbig: 1e+30\n",
		"expr: <+pipeline.variables.x>\ntag: \"!notatag\"\nhash: \"# comment\"\n",
	}
	for _, d := range docs {
		n, err := parse.ParseString(d)
		if err != nil {
			t.Fatalf("parse %q: %v", d, err)
		}
		for _, f := range []format.Format{format.YAMLFormat, format.JSONFormat} {
			buf := bytes.NewBuffer(nil)
			if err := Encode(n, buf, EncodeFormat(f)); err != nil {
				t.Fatalf("encode %s: %v", f, err)
			}
			back, err := parse.Parse(buf.Bytes(), parse.ParseFormat(f))
			if err != nil {
				t.Fatalf("reparse %s:\n%s\n%v", f, buf.String(), err)
			}
			if !ir.Equal(n, back) {
				t.Errorf("%s round trip changed document:\n%s", f, buf.String())
			}
		}
	}
}

func TestEncodeSpecialFloats(t *testing.T) {
	n := ir.FromFloat(math.Inf(1))
	if s := MustString(n); s != ".inf" {
		t.Errorf("got %q", s)
	}
	buf := bytes.NewBuffer(nil)
	if err := Encode(n, buf, EncodeFormat(format.JSONFormat)); err == nil {
		t.Error("expected error encoding +Inf as json")
	}
}

func TestEncodeColors(t *testing.T) {
	n := ir.FromKeyVals([]ir.KeyVal{{Key: ir.FromString("a"), Val: ir.FromInt(1)}})
	var seen []ColorAttr
	buf := bytes.NewBuffer(nil)
	err := Encode(n, buf, func(es *EncState) {
		es.Color = func(_ ir.Type, attr ColorAttr, v string) string {
			seen = append(seen, attr)
			return v
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a: 1\n" {
		t.Errorf("got %q", buf.String())
	}
	if len(seen) != 3 {
		t.Errorf("expected field, separator and value colors, got %v", seen)
	}
}
