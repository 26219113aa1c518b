package format

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"y": YAMLFormat, "yaml": YAMLFormat, "yml": YAMLFormat,
		"j": JSONFormat, "json": JSONFormat,
	} {
		got, err := ParseFormat(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: got %s want %s", in, got, want)
		}
	}
	if _, err := ParseFormat("toml"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("expected ErrBadFormat, got %v", err)
	}
}

func TestFromPath(t *testing.T) {
	if FromPath("a/b.json") != JSONFormat {
		t.Error("json file")
	}
	if FromPath("a/b.yml") != YAMLFormat || FromPath("-") != YAMLFormat {
		t.Error("yaml default")
	}
}

func TestText(t *testing.T) {
	var f Format
	if err := f.UnmarshalText([]byte("json")); err != nil {
		t.Fatal(err)
	}
	if !f.IsJSON() || f.Suffix() != ".json" || f.String() != "json" {
		t.Errorf("unexpected %v", f)
	}
	if _, err := Format(7).MarshalText(); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
