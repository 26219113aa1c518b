package reconcile

import (
	"context"
	"io"
	"net"

	json "github.com/goccy/go-json"
	"go.lsp.dev/jsonrpc2"

	"github.com/stagecraft/tplmerge/debug"
	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/parse"
	"github.com/stagecraft/tplmerge/template"
)

// Engine is what a Server exposes.
type Engine interface {
	Resolve(ctx context.Context, doc *ir.Node, scope template.ScopeRef, opts template.Options) (*template.Result, error)
	Refresh(ctx context.Context, doc *ir.Node, scope template.ScopeRef, crossServiceReconcile bool) (*ir.Node, error)
	Inputs(ctx context.Context, scope template.ScopeRef, templateRef, versionLabel string) (*ir.Node, error)
}

// Server answers template requests with an Engine. template/reconcile is
// served by a local refresh in the requested scope.
type Server struct {
	engine Engine
}

func NewServer(engine Engine) *Server {
	return &Server{engine: engine}
}

// ServeConn serves a single connection until it closes.
func (s *Server) ServeConn(ctx context.Context, rwc io.ReadWriteCloser) error {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	conn.Go(ctx, s.Handle)
	select {
	case <-conn.Done():
	case <-ctx.Done():
		conn.Close()
		<-conn.Done()
	}
	return conn.Err()
}

// Serve accepts connections on ln until it fails or is closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return jsonrpc2.Serve(ctx, ln, jsonrpc2.HandlerServer(s.Handle), 0)
}

// Handle is the jsonrpc2.Handler of s.
func (s *Server) Handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if debug.RPC() {
		debug.Logf("rpc handle %s\n", req.Method())
	}
	switch req.Method() {
	case MethodReconcile:
		p := &ReconcileParams{}
		if err := json.Unmarshal(req.Params(), p); err != nil {
			return reply(ctx, nil, invalidParams(err))
		}
		res, err := s.reconcile(ctx, p)
		return replyWith(ctx, reply, res, err)
	case MethodResolve:
		p := &ResolveParams{}
		if err := json.Unmarshal(req.Params(), p); err != nil {
			return reply(ctx, nil, invalidParams(err))
		}
		res, err := s.resolve(ctx, p)
		return replyWith(ctx, reply, res, err)
	case MethodRefresh:
		p := &RefreshParams{}
		if err := json.Unmarshal(req.Params(), p); err != nil {
			return reply(ctx, nil, invalidParams(err))
		}
		res, err := s.refresh(ctx, p)
		return replyWith(ctx, reply, res, err)
	case MethodInputs:
		p := &InputsParams{}
		if err := json.Unmarshal(req.Params(), p); err != nil {
			return reply(ctx, nil, invalidParams(err))
		}
		res, err := s.inputs(ctx, p)
		return replyWith(ctx, reply, res, err)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (s *Server) reconcile(ctx context.Context, p *ReconcileParams) (*ReconcileResult, error) {
	doc, err := parse.ParseString(p.Document)
	if err != nil {
		return nil, invalidParams(err)
	}
	scope := template.ScopeRef{Account: p.AccountID, Org: p.OrgID, Project: p.ProjectID}
	out, err := s.engine.Refresh(ctx, doc, scope, false)
	if err != nil {
		ws, rest := toWire(err)
		return &ReconcileResult{Errors: ws}, rest
	}
	text, err := encodeDoc(out)
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{Document: text}, nil
}

func (s *Server) resolve(ctx context.Context, p *ResolveParams) (*ResolveResult, error) {
	doc, err := parse.ParseString(p.Document)
	if err != nil {
		return nil, invalidParams(err)
	}
	out, err := s.engine.Resolve(ctx, doc, p.Scope, template.Options{
		ReturnAnnotated:          p.ReturnAnnotated,
		AppendInputSetValidators: p.AppendInputSetValidators,
	})
	if err != nil {
		ws, rest := toWire(err)
		return &ResolveResult{Errors: ws}, rest
	}
	res := &ResolveResult{References: out.References, Modules: out.Modules}
	if res.Merged, err = encodeDoc(out.Merged); err != nil {
		return nil, err
	}
	if out.Annotated != nil {
		if res.Annotated, err = encodeDoc(out.Annotated); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Server) refresh(ctx context.Context, p *RefreshParams) (*RefreshResult, error) {
	doc, err := parse.ParseString(p.Document)
	if err != nil {
		return nil, invalidParams(err)
	}
	out, err := s.engine.Refresh(ctx, doc, p.Scope, p.CrossServiceReconcile)
	if err != nil {
		ws, rest := toWire(err)
		return &RefreshResult{Errors: ws}, rest
	}
	text, err := encodeDoc(out)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{Document: text}, nil
}

func (s *Server) inputs(ctx context.Context, p *InputsParams) (*InputsResult, error) {
	out, err := s.engine.Inputs(ctx, p.Scope, p.TemplateRef, p.VersionLabel)
	if err != nil {
		ws, rest := toWire(err)
		return &InputsResult{Errors: ws}, rest
	}
	if out == nil {
		return &InputsResult{}, nil
	}
	text, err := encodeDoc(out)
	if err != nil {
		return nil, err
	}
	return &InputsResult{Inputs: text}, nil
}

func replyWith(ctx context.Context, reply jsonrpc2.Replier, res any, err error) error {
	if err != nil {
		if _, ok := err.(*jsonrpc2.Error); !ok {
			err = jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
		}
		return reply(ctx, nil, err)
	}
	return reply(ctx, res, nil)
}

func invalidParams(err error) error {
	return jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error())
}

func encodeDoc(doc *ir.Node) (string, error) {
	return encode.String(doc)
}
