package template

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no entity matches.
var ErrNotFound = errors.New("not found")

// Store is the read-only template catalog consulted by the engine.
type Store interface {
	// Lookup returns the first non-deleted entity named id along chain.
	// An empty version selects the stable entity.
	Lookup(ctx context.Context, chain []ScopeRef, id, version string) (*Entity, error)
	// CountReferencesToFile counts templates imported from path in
	// repoURL.
	CountReferencesToFile(ctx context.Context, accountID, repoURL, path string) (int, error)
}

// ScopedGetter looks up a template in exactly one scope.
type ScopedGetter interface {
	Get(ctx context.Context, scope ScopeRef, id, version string) (*Entity, error)
}

// LookupChain implements Store.Lookup on top of g, short circuiting at the
// first scope holding a non-deleted match.
func LookupChain(ctx context.Context, g ScopedGetter, chain []ScopeRef, id, version string) (*Entity, error) {
	for _, s := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := g.Get(ctx, s, id, version)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if e.Deleted {
			continue
		}
		return e, nil
	}
	return nil, ErrNotFound
}
