package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stagecraft/tplmerge/debug"
	"github.com/stagecraft/tplmerge/template"
)

var ErrDuplicate = errors.New("duplicate template")

type entityKey struct {
	scope template.ScopeRef
	id    string
}

// Memory is an in-memory template catalog safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	entities map[entityKey][]*template.Entity
}

func NewMemory() *Memory {
	return &Memory{entities: map[entityKey][]*template.Entity{}}
}

// Put adds e. Putting a stable entity clears the stable flag of the other
// versions of the same template.
func (m *Memory) Put(e *template.Entity) error {
	if e.Identifier == "" {
		return fmt.Errorf("template without identifier in %s", e.Scope)
	}
	if e.VersionLabel == "" {
		return fmt.Errorf("template %s in %s: empty versionLabel", e.Identifier, e.Scope)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := entityKey{scope: e.Scope, id: e.Identifier}
	versions := m.entities[k]
	for _, o := range versions {
		if o.VersionLabel == e.VersionLabel {
			return fmt.Errorf("%w: %s@%s in %s", ErrDuplicate, e.Identifier, e.VersionLabel, e.Scope)
		}
	}
	if e.Stable {
		for _, o := range versions {
			o.Stable = false
		}
	}
	m.entities[k] = append(versions, e)
	return nil
}

// Delete marks a version deleted. Deleted versions are never returned.
func (m *Memory) Delete(scope template.ScopeRef, id, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.entities[entityKey{scope: scope, id: id}] {
		if o.VersionLabel == version {
			o.Deleted = true
			return nil
		}
	}
	return fmt.Errorf("%s@%s in %s: %w", id, version, scope, template.ErrNotFound)
}

// Get implements template.ScopedGetter.
func (m *Memory) Get(ctx context.Context, scope template.ScopeRef, id, version string) (*template.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entities[entityKey{scope: scope, id: id}] {
		if e.Deleted {
			continue
		}
		if (version == "" && e.Stable) || (version != "" && e.VersionLabel == version) {
			return e, nil
		}
	}
	return nil, template.ErrNotFound
}

func (m *Memory) Lookup(ctx context.Context, chain []template.ScopeRef, id, version string) (*template.Entity, error) {
	e, err := template.LookupChain(ctx, m, chain, id, version)
	if debug.Store() {
		debug.Logf("memory lookup %s@%q in %v: %v\n", id, version, chain, err)
	}
	return e, err
}

// CountReferencesToFile counts the live templates of an account imported
// from path in repoURL.
func (m *Memory) CountReferencesToFile(ctx context.Context, accountID, repoURL, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k, versions := range m.entities {
		if k.scope.Account != accountID {
			continue
		}
		for _, e := range versions {
			if !e.Deleted && e.RepoURL == repoURL && e.FilePath == path {
				n++
			}
		}
	}
	return n, nil
}

// Len returns the number of live entities.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, versions := range m.entities {
		for _, e := range versions {
			if !e.Deleted {
				n++
			}
		}
	}
	return n
}
