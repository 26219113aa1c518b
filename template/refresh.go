package template

import (
	"context"
	"errors"

	"github.com/stagecraft/tplmerge/debug"
	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/parse"
)

// Reconciler is a remote service validating refreshed documents beyond
// what a structural merge can check.
type Reconciler interface {
	// Reconcile returns the reconciled form of document, a YAML text.
	Reconcile(ctx context.Context, accountID, orgID, projectID, document string) (string, error)
}

// Refresher brings templateInputs blocks in line with the current shape
// of their templates. A Refresher is safe for concurrent use.
type Refresher struct {
	store    Store
	remote   Reconciler
	settings *settings
}

// NewRefresher returns a Refresher. remote may be nil when cross service
// reconciliation is never requested.
func NewRefresher(store Store, remote Reconciler, opts ...Option) *Refresher {
	return &Refresher{store: store, remote: remote, settings: newSettings(opts)}
}

// Refresh returns doc with each templateInputs block rebuilt from the
// skeleton of the current template: existing values are kept where the
// skeleton still has them, removed fields are dropped and new fields
// appear with their placeholder. Template bodies are not substituted. doc
// is not modified.
//
// With crossServiceReconcile the locally refreshed document is sent to the
// Reconciler and its reply is returned instead. Any remote failure aborts
// the refresh.
func (r *Refresher) Refresh(ctx context.Context, doc *ir.Node, scope ScopeRef, crossServiceReconcile bool) (*ir.Node, error) {
	if doc == nil {
		return nil, errors.New("refresh: nil document")
	}
	rf := &refresh{
		ctx:   ctx,
		store: r.store,
		guard: NewGuard(r.settings.limits, doc.Count()),
	}
	work := detach(doc)
	if err := rf.refreshAll(work, scope, ""); err != nil {
		return nil, err
	}
	if len(rf.errs) != 0 {
		return nil, rf.errs
	}
	if !crossServiceReconcile {
		return work, nil
	}
	return r.reconcile(ctx, work, scope)
}

func (r *Refresher) reconcile(ctx context.Context, doc *ir.Node, scope ScopeRef) (*ir.Node, error) {
	if r.remote == nil {
		return nil, &Error{Kind: ErrRemoteReconciliation, Msg: "no reconciler configured"}
	}
	text, err := encode.String(doc)
	if err != nil {
		return nil, &Error{Kind: ErrRemoteReconciliation, Msg: "encoding document", Err: err}
	}
	if debug.Refresh() {
		debug.Logf("reconcile %s:\n%s", scope, text)
	}
	out, err := r.remote.Reconcile(ctx, scope.Account, scope.Org, scope.Project, text)
	if err != nil {
		return nil, &Error{Kind: ErrRemoteReconciliation, Err: err}
	}
	res, err := parse.Parse([]byte(out))
	if err != nil {
		return nil, &Error{Kind: ErrRemoteReconciliation, Msg: "decoding reply", Err: err}
	}
	return res, nil
}

// refresh is the state of one Refresh call.
type refresh struct {
	ctx   context.Context
	store Store
	guard *Guard
	errs  Errors
}

// refreshAll refreshes every reference in doc, a caller document or a
// templateInputs block. Only errors that abort the call are returned.
func (rf *refresh) refreshAll(doc *ir.Node, scope ScopeRef, prefix string) error {
	refs, err := FindReferences(doc)
	if es, ok := AsErrors(err); ok {
		for _, e := range es {
			e.FQN = joinFQN(prefix, e.FQN)
			rf.errs = append(rf.errs, e)
		}
	}
	for _, ref := range refs {
		if err := rf.ctx.Err(); err != nil {
			return err
		}
		err := rf.refreshOne(ref, scope, joinFQN(prefix, ref.FQN))
		if err == nil {
			continue
		}
		var te *Error
		if !errors.As(err, &te) || fatal(te) {
			return err
		}
		rf.errs = append(rf.errs, te)
	}
	return nil
}

func (rf *refresh) refreshOne(ref *Reference, scope ScopeRef, fqn string) error {
	e, err := lookup(rf.ctx, rf.store, scope, ref, fqn)
	if err != nil {
		return err
	}
	if err := rf.guard.Enter(e, fqn); err != nil {
		return err
	}
	defer rf.guard.Exit()
	skel := ExtractSkeleton(e.Body)
	if skel == nil {
		if ref.Node.Delete(TemplateInputsKey) && debug.Refresh() {
			debug.Logf("refresh %s: %s has no runtime inputs\n", fqn, ref.TemplateRef)
		}
		return nil
	}
	if err := rf.guard.Grow(e, fqn, skel.Count()); err != nil {
		return err
	}
	m := &skeletonMerger{fqn: fqn}
	inputs := m.merge(ref.Inputs, skel, "")
	if len(m.errs) != 0 {
		rf.errs = append(rf.errs, m.errs...)
		return nil
	}
	ref.Node.Set(TemplateInputsKey, inputs)
	if debug.Refresh() {
		debug.Logf("refresh %s: inputs\n%s\n", fqn, encode.MustString(inputs))
	}
	// nested references resolve from the scope owning the template
	return rf.refreshAll(inputs, e.Scope, fqn)
}
