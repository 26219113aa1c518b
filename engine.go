// Package tplmerge wires template stores, limits and a remote reconciler
// into a single Engine.
package tplmerge

import (
	"context"
	"errors"
	"fmt"

	"github.com/stagecraft/tplmerge/config"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/reconcile"
	"github.com/stagecraft/tplmerge/store"
	"github.com/stagecraft/tplmerge/template"
)

type Engine struct {
	store     template.Store
	resolver  *template.Resolver
	refresher *template.Refresher
	closer    func() error
}

var _ reconcile.Engine = (*Engine)(nil)

type engineOpts struct {
	limits template.Limits
	remote template.Reconciler
}

type EngineOption func(*engineOpts)

func WithLimits(l template.Limits) EngineOption {
	return func(o *engineOpts) { o.limits = l }
}

func WithReconciler(r template.Reconciler) EngineOption {
	return func(o *engineOpts) { o.remote = r }
}

func New(st template.Store, opts ...EngineOption) *Engine {
	o := &engineOpts{limits: template.DefaultLimits()}
	for _, opt := range opts {
		opt(o)
	}
	return &Engine{
		store:     st,
		resolver:  template.NewResolver(st, template.WithLimits(o.limits)),
		refresher: template.NewRefresher(st, o.remote, template.WithLimits(o.limits)),
	}
}

// FromConfig loads the template directory of cfg and, when an address is
// configured, connects to the remote reconciler. Close releases the
// connection.
func FromConfig(ctx context.Context, cfg *config.Config) (*Engine, error) {
	st, err := store.LoadDir(cfg.Store.Dir, cfg.Scope.Account)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	opts := []EngineOption{WithLimits(cfg.Limits)}
	var closer func() error
	if cfg.Reconcile.Addr != "" {
		c, err := reconcile.Dial(ctx, cfg.Reconcile.Addr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithReconciler(c))
		closer = c.Close
	}
	e := New(st, opts...)
	e.closer = closer
	return e, nil
}

func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer()
}

func (e *Engine) Store() template.Store {
	return e.store
}

func (e *Engine) Resolve(ctx context.Context, doc *ir.Node, scope template.ScopeRef, opts template.Options) (*template.Result, error) {
	return e.resolver.Resolve(ctx, doc, scope, opts)
}

func (e *Engine) Refresh(ctx context.Context, doc *ir.Node, scope template.ScopeRef, crossServiceReconcile bool) (*ir.Node, error) {
	return e.refresher.Refresh(ctx, doc, scope, crossServiceReconcile)
}

// Inputs returns the runtime inputs of a template, or nil when it has
// none.
func (e *Engine) Inputs(ctx context.Context, scope template.ScopeRef, templateRef, versionLabel string) (*ir.Node, error) {
	if templateRef == "" {
		return nil, errors.New("inputs: empty templateRef")
	}
	t, err := template.GetTemplateWithInputs(ctx, e.store, scope, templateRef, versionLabel)
	if err != nil {
		return nil, err
	}
	return t.Inputs, nil
}
