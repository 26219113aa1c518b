package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/stagecraft/tplmerge/debug"
)

// lookup fetches the entity named by ref as seen from scope. Missing and
// inconsistent entities yield an *Error; any other failure is returned
// wrapped and aborts the caller.
func lookup(ctx context.Context, store Store, scope ScopeRef, ref *Reference, fqn string) (*Entity, error) {
	chain, id, err := scope.LookupChain(ref.TemplateRef)
	if err != nil {
		return nil, &Error{Kind: ErrInvalidReference, FQN: fqn, Ref: ref.TemplateRef, Version: ref.VersionLabel, Err: err}
	}
	e, err := store.Lookup(ctx, chain, id, ref.VersionLabel)
	if errors.Is(err, ErrNotFound) {
		msg := fmt.Sprintf("template %s with versionLabel %s does not exist or has been deleted", ref.TemplateRef, ref.VersionLabel)
		if ref.VersionLabel == "" {
			msg = fmt.Sprintf("template %s with stable versionLabel does not exist or has been deleted", ref.TemplateRef)
		}
		return nil, &Error{Kind: ErrTemplateNotFound, FQN: fqn, Ref: ref.TemplateRef, Version: ref.VersionLabel, Msg: msg}
	}
	if err != nil {
		return nil, fmt.Errorf("looking up template %s at %s: %w", ref.TemplateRef, fqn, err)
	}
	if e.Deleted || !e.Matches(chain, id, ref.VersionLabel) {
		return nil, &Error{
			Kind:    ErrInvalidReference,
			FQN:     fqn,
			Ref:     ref.TemplateRef,
			Version: ref.VersionLabel,
			Msg:     fmt.Sprintf("store returned %s@%s from scope %s", e.Identifier, e.VersionLabel, e.Scope),
		}
	}
	if debug.Store() {
		debug.Logf("lookup %s %s@%q -> %s@%s in %s\n", fqn, ref.TemplateRef, ref.VersionLabel, e.Identifier, e.VersionLabel, e.Scope)
	}
	return e, nil
}
