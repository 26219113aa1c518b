package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/template"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stages/build.yaml", `
template:
  name: Build
  identifier: build
  versionLabel: v1
  type: Stage
  stableTemplate: true
  modules: [ci]
  spec:
    type: CI
    spec:
      script: <+input>
`)
	writeFile(t, dir, "org/step.json", `{
  "template": {
    "identifier": "step",
    "versionLabel": "v2",
    "type": "Step",
    "orgIdentifier": "o1",
    "spec": {"type": "Run", "command": "<+input>"}
  }
}`)
	writeFile(t, dir, "README.md", "not a template")

	m, err := LoadDir(dir, "acc")
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Fatalf("loaded %d templates", m.Len())
	}

	e, err := m.Lookup(context.Background(), proj.Chain(), "build", "")
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "Build" || e.Type != template.StageType || e.Scope != acc || e.FilePath != "stages/build.yaml" {
		t.Errorf("unexpected entity %+v", e)
	}
	if len(e.Modules) != 1 || e.Modules[0] != "ci" {
		t.Errorf("modules = %v", e.Modules)
	}
	script, err := e.Body.GetKPath("spec.script")
	if err != nil || script.String != "<+input>" {
		t.Errorf("body not loaded: %v", err)
	}
	if e.Body.Parent != nil {
		t.Error("body still attached to the file document")
	}

	e, err = m.Lookup(context.Background(), proj.Chain(), "step", "v2")
	if err != nil {
		t.Fatal(err)
	}
	if e.Scope != org || e.Stable {
		t.Errorf("unexpected entity %+v", e)
	}
	if cmd := ir.Get(e.Body, "command"); cmd == nil || cmd.String != "<+input>" {
		t.Error("json body not loaded")
	}
}

func TestLoadDirErrors(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{name: "no template map", file: "a.yaml", content: "identifier: x\n"},
		{name: "project without org", file: "b.yaml", content: "template:\n  identifier: x\n  versionLabel: v1\n  projectIdentifier: p\n"},
		{name: "bad yaml", file: "c.yaml", content: "template: [\n"},
		{name: "missing version", file: "d.yaml", content: "template:\n  identifier: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)
			if _, err := LoadDir(dir, "acc"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDirDuplicate(t *testing.T) {
	dir := t.TempDir()
	tpl := "template:\n  identifier: x\n  versionLabel: v1\n  spec:\n    a: 1\n"
	writeFile(t, dir, "a.yaml", tpl)
	writeFile(t, dir, "b.yaml", tpl)
	if _, err := LoadDir(dir, "acc"); err == nil {
		t.Error("expected duplicate error")
	}
}
