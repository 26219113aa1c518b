package template

import (
	"context"
	"errors"

	"github.com/stagecraft/tplmerge/debug"
	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/ir"
)

// Options control a single Resolve call.
type Options struct {
	// ReturnAnnotated requests Result.Annotated.
	ReturnAnnotated bool
	// AppendInputSetValidators gives caller values that are a bare
	// "<+input>" the validators of the template placeholder they fill.
	AppendInputSetValidators bool
}

// Resolver substitutes template references with template bodies. A
// Resolver is safe for concurrent use.
type Resolver struct {
	store    Store
	settings *settings
}

func NewResolver(store Store, opts ...Option) *Resolver {
	return &Resolver{store: store, settings: newSettings(opts)}
}

// Resolve returns doc with every template reference replaced by its
// template body merged with the reference's templateInputs. References
// inside template bodies are resolved first, from the scope owning the
// template. doc is not modified.
//
// Missing templates, malformed references and input validation failures
// are collected and returned together as Errors. Recursion limits, store
// failures and cancellation are returned at once.
func (r *Resolver) Resolve(ctx context.Context, doc *ir.Node, scope ScopeRef, opts Options) (*Result, error) {
	if doc == nil {
		return nil, errors.New("resolve: nil document")
	}
	rs := &resolution{
		ctx:     ctx,
		store:   r.store,
		opts:    opts,
		guard:   NewGuard(r.settings.limits, doc.Count()),
		fqns:    map[string]bool{},
		failed:  map[*ir.Node]bool{},
		modules: map[string]bool{},
	}
	work := detach(doc)
	if err := rs.expand(work, scope, ""); err != nil {
		return nil, err
	}
	if len(rs.errs) != 0 {
		return nil, rs.errs
	}
	res := &Result{
		References: rs.refs,
		Modules:    sortedSet(rs.modules),
	}
	if opts.ReturnAnnotated {
		res.Annotated = annotate(detach(work))
	}
	res.Merged = work.StripTags()
	return res, nil
}

// resolution is the state of one Resolve call.
type resolution struct {
	ctx   context.Context
	store Store
	opts  Options
	guard *Guard

	refs    []ReferenceSummary
	fqns    map[string]bool
	failed  map[*ir.Node]bool
	modules map[string]bool
	errs    Errors
}

// expand resolves the references in doc, a caller document or a template
// body, in place. prefix is the FQN of the reference whose body doc is.
// Only errors that abort the call are returned.
func (rs *resolution) expand(doc *ir.Node, scope ScopeRef, prefix string) error {
	l := newLocator(func(owner *ir.Node) bool { return rs.failed[owner] })
	l.walk(doc, "")
	for _, e := range l.errs {
		e.FQN = joinFQN(prefix, e.FQN)
		rs.errs = append(rs.errs, e)
	}
	for _, owner := range l.bad {
		rs.failed[owner] = true
	}
	for _, ref := range l.refs {
		if err := rs.ctx.Err(); err != nil {
			return err
		}
		err := rs.resolve(ref, scope, joinFQN(prefix, ref.FQN))
		if err == nil {
			continue
		}
		var te *Error
		if !errors.As(err, &te) || fatal(te) {
			return err
		}
		rs.failed[ref.Owner] = true
		rs.errs = append(rs.errs, te)
	}
	return nil
}

func (rs *resolution) resolve(ref *Reference, scope ScopeRef, fqn string) error {
	if rs.fqns[fqn] {
		return &Error{Kind: ErrInvalidReference, FQN: fqn, Ref: ref.TemplateRef, Version: ref.VersionLabel, Msg: "duplicate reference site"}
	}
	rs.fqns[fqn] = true
	e, err := lookup(rs.ctx, rs.store, scope, ref, fqn)
	if err != nil {
		return err
	}
	body := detach(e.Body)
	if body == nil || body.Type != ir.ObjectType {
		return &Error{Kind: ErrInvalidReference, FQN: fqn, Ref: ref.TemplateRef, Version: ref.VersionLabel, Msg: "template body is not a map"}
	}
	rs.refs = append(rs.refs, newSummary(e, ref, fqn))
	for _, m := range e.Modules {
		rs.modules[m] = true
	}
	if err := rs.guard.Enter(e, fqn); err != nil {
		return err
	}
	defer rs.guard.Exit()
	if err := rs.guard.Grow(e, fqn, body.Count()); err != nil {
		return err
	}
	if debug.Resolve() {
		debug.Logf("resolve %s: %s@%s from %s depth %d\n", fqn, e.Identifier, e.VersionLabel, e.Scope, rs.guard.Depth())
	}
	if err := rs.expand(body, e.Scope, fqn); err != nil {
		return err
	}
	if ref.Inputs != nil {
		m := &inputMerger{fqn: fqn, appendValidators: rs.opts.AppendInputSetValidators}
		body = m.merge(body, ref.Inputs, "")
		rs.errs = append(rs.errs, m.errs...)
		// references carried in by the inputs resolve from the caller
		if err := rs.expand(body, scope, fqn); err != nil {
			return err
		}
	}
	splice(ref, body)
	markOwner(ref.Owner, ref, e)
	if debug.Resolve() {
		debug.Logf("resolved %s:\n%s\n", fqn, encode.MustString(ref.Owner))
	}
	return nil
}

// splice replaces the reference of ref.Owner by the fields of body the
// owner does not already have.
func splice(ref *Reference, body *ir.Node) {
	owner := ref.Owner
	owner.Delete(TemplateKey)
	for i, f := range body.Fields {
		if owner.FieldIndex(f.String) >= 0 {
			continue
		}
		owner.Set(f.String, body.Values[i])
	}
}
