package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/template"
)

var (
	acc  = template.ScopeRef{Account: "acc"}
	org  = template.ScopeRef{Account: "acc", Org: "o1"}
	proj = template.ScopeRef{Account: "acc", Org: "o1", Project: "p1"}
)

func entity(scope template.ScopeRef, id, version string, stable bool) *template.Entity {
	return &template.Entity{
		Identifier:   id,
		VersionLabel: version,
		Scope:        scope,
		Stable:       stable,
		Body:         ir.FromKeyVals([]ir.KeyVal{{Key: ir.FromString("v"), Val: ir.FromString(version)}}),
	}
}

func TestMemoryPut(t *testing.T) {
	m := NewMemory()
	if err := m.Put(entity(acc, "t", "v1", true)); err != nil {
		t.Fatal(err)
	}
	if err := m.Put(entity(acc, "t", "v1", false)); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected duplicate, got %v", err)
	}
	if err := m.Put(entity(acc, "", "v1", false)); err == nil {
		t.Error("expected error for empty identifier")
	}
	if err := m.Put(entity(acc, "t", "", false)); err == nil {
		t.Error("expected error for empty versionLabel")
	}
	if err := m.Put(entity(acc, "t", "v2", true)); err != nil {
		t.Fatal(err)
	}
	e, err := m.Get(context.Background(), acc, "t", "")
	if err != nil {
		t.Fatal(err)
	}
	if e.VersionLabel != "v2" {
		t.Errorf("stable version is %s", e.VersionLabel)
	}
	if m.Len() != 2 {
		t.Errorf("len = %d", m.Len())
	}
}

func TestMemoryLookup(t *testing.T) {
	m := NewMemory()
	for _, e := range []*template.Entity{
		entity(acc, "t", "v1", true),
		entity(proj, "t", "v1", true),
		entity(org, "u", "v1", false),
	} {
		if err := m.Put(e); err != nil {
			t.Fatal(err)
		}
	}
	ctx := context.Background()

	e, err := m.Lookup(ctx, proj.Chain(), "t", "")
	if err != nil || e.Scope != proj {
		t.Fatalf("Lookup = %v, %v", e, err)
	}
	if _, err := m.Lookup(ctx, proj.Chain(), "u", ""); !errors.Is(err, template.ErrNotFound) {
		t.Errorf("unstable template returned for stable lookup: %v", err)
	}
	if e, err := m.Lookup(ctx, proj.Chain(), "u", "v1"); err != nil || e.Scope != org {
		t.Errorf("Lookup u@v1 = %v, %v", e, err)
	}

	if err := m.Delete(proj, "t", "v1"); err != nil {
		t.Fatal(err)
	}
	e, err = m.Lookup(ctx, proj.Chain(), "t", "v1")
	if err != nil || e.Scope != acc {
		t.Errorf("deleted template not skipped: %v, %v", e, err)
	}
	if err := m.Delete(proj, "t", "v9"); !errors.Is(err, template.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := m.Lookup(cctx, proj.Chain(), "t", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

func TestMemoryCountReferencesToFile(t *testing.T) {
	m := NewMemory()
	for i, e := range []*template.Entity{
		entity(acc, "a", "v1", true),
		entity(org, "b", "v1", true),
		entity(acc, "c", "v1", true),
		entity(template.ScopeRef{Account: "other"}, "d", "v1", true),
	} {
		e.RepoURL = "https://git.example.com/tpl"
		e.FilePath = "stage.yaml"
		if i == 2 {
			e.FilePath = "step.yaml"
		}
		if err := m.Put(e); err != nil {
			t.Fatal(err)
		}
	}
	n, err := m.CountReferencesToFile(context.Background(), "acc", "https://git.example.com/tpl", "stage.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d", n)
	}
}
