package template

import (
	"context"
	"strings"
	"testing"

	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/parse"
)

var (
	accScope  = ScopeRef{Account: "acc"}
	orgScope  = ScopeRef{Account: "acc", Org: "o1"}
	projScope = ScopeRef{Account: "acc", Org: "o1", Project: "p1"}
)

// testStore is a minimal Store over a slice of entities.
type testStore struct {
	entities []*Entity
	lookups  int
}

func (s *testStore) add(t *testing.T, scope ScopeRef, id, version string, stable bool, body string) *Entity {
	t.Helper()
	e := &Entity{
		Identifier:   id,
		VersionLabel: version,
		Scope:        scope,
		Type:         StageType,
		Stable:       stable,
		Body:         mustParse(t, body),
	}
	s.entities = append(s.entities, e)
	return e
}

func (s *testStore) Get(ctx context.Context, scope ScopeRef, id, version string) (*Entity, error) {
	for _, e := range s.entities {
		if e.Scope != scope || e.Identifier != id {
			continue
		}
		if version == "" && e.Stable || version != "" && e.VersionLabel == version {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *testStore) Lookup(ctx context.Context, chain []ScopeRef, id, version string) (*Entity, error) {
	s.lookups++
	return LookupChain(ctx, s, chain, id, version)
}

func (s *testStore) CountReferencesToFile(ctx context.Context, accountID, repoURL, path string) (int, error) {
	n := 0
	for _, e := range s.entities {
		if e.Scope.Account == accountID && e.RepoURL == repoURL && e.FilePath == path {
			n++
		}
	}
	return n, nil
}

func mustParse(t *testing.T, doc string) *ir.Node {
	t.Helper()
	n, err := parse.ParseString(doc)
	if err != nil {
		t.Fatalf("parsing %q: %v", doc, err)
	}
	return n
}

func assertEqual(t *testing.T, got, want *ir.Node) {
	t.Helper()
	if !ir.Equal(got, want) {
		t.Errorf("documents differ\ngot:\n%s\nwant:\n%s", docString(got), docString(want))
	}
}

func docString(n *ir.Node) string {
	if n == nil {
		return "<nil>"
	}
	s, err := encode.String(n)
	if err != nil {
		return err.Error()
	}
	return s
}

func errorKinds(t *testing.T, err error) []string {
	t.Helper()
	es, ok := AsErrors(err)
	if !ok {
		t.Fatalf("expected template errors, got %v", err)
	}
	res := make([]string, len(es))
	for i, e := range es {
		res[i] = e.Kind.Error()
	}
	return res
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
