package reconcile

import (
	"context"
	"fmt"
	"io"
	"net"

	"go.lsp.dev/jsonrpc2"

	"github.com/stagecraft/tplmerge/debug"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/parse"
	"github.com/stagecraft/tplmerge/template"
)

// Client calls a remote template engine. It implements
// template.Reconciler.
type Client struct {
	conn jsonrpc2.Conn
}

var _ template.Reconciler = (*Client)(nil)

// NewClient starts a client over rwc. Incoming requests are rejected.
func NewClient(ctx context.Context, rwc io.ReadWriteCloser) *Client {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	conn.Go(ctx, jsonrpc2.MethodNotFoundHandler)
	return &Client{conn: conn}
}

// Dial connects to addr, a tcp host:port or a unix socket path.
func Dial(ctx context.Context, addr string) (*Client, error) {
	network := "tcp"
	if _, _, err := net.SplitHostPort(addr); err != nil {
		network = "unix"
	}
	var d net.Dialer
	c, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s %s: %w", network, addr, err)
	}
	return NewClient(ctx, c), nil
}

func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.conn.Done()
	return err
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if debug.RPC() {
		debug.Logf("rpc call %s\n", method)
	}
	if _, err := c.conn.Call(ctx, method, params, result); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *Client) Reconcile(ctx context.Context, accountID, orgID, projectID, document string) (string, error) {
	res := &ReconcileResult{}
	err := c.call(ctx, MethodReconcile, &ReconcileParams{
		AccountID: accountID,
		OrgID:     orgID,
		ProjectID: projectID,
		Document:  document,
	}, res)
	if err != nil {
		return "", err
	}
	if err := fromWire(res.Errors); err != nil {
		return "", err
	}
	return res.Document, nil
}

// Resolve resolves doc remotely.
func (c *Client) Resolve(ctx context.Context, doc *ir.Node, scope template.ScopeRef, opts template.Options) (*template.Result, error) {
	text, err := encodeDoc(doc)
	if err != nil {
		return nil, err
	}
	res := &ResolveResult{}
	err = c.call(ctx, MethodResolve, &ResolveParams{
		Scope:                    scope,
		Document:                 text,
		ReturnAnnotated:          opts.ReturnAnnotated,
		AppendInputSetValidators: opts.AppendInputSetValidators,
	}, res)
	if err != nil {
		return nil, err
	}
	if err := fromWire(res.Errors); err != nil {
		return nil, err
	}
	out := &template.Result{References: res.References, Modules: res.Modules}
	if out.Merged, err = parse.ParseString(res.Merged); err != nil {
		return nil, fmt.Errorf("decoding merged document: %w", err)
	}
	if res.Annotated != "" {
		if out.Annotated, err = parse.ParseString(res.Annotated); err != nil {
			return nil, fmt.Errorf("decoding annotated document: %w", err)
		}
	}
	return out, nil
}

// Refresh refreshes doc remotely.
func (c *Client) Refresh(ctx context.Context, doc *ir.Node, scope template.ScopeRef, crossServiceReconcile bool) (*ir.Node, error) {
	text, err := encodeDoc(doc)
	if err != nil {
		return nil, err
	}
	res := &RefreshResult{}
	err = c.call(ctx, MethodRefresh, &RefreshParams{
		Scope:                 scope,
		Document:              text,
		CrossServiceReconcile: crossServiceReconcile,
	}, res)
	if err != nil {
		return nil, err
	}
	if err := fromWire(res.Errors); err != nil {
		return nil, err
	}
	return parse.ParseString(res.Document)
}

// Inputs returns the runtime inputs of a template, or nil when it has
// none.
func (c *Client) Inputs(ctx context.Context, scope template.ScopeRef, templateRef, versionLabel string) (*ir.Node, error) {
	res := &InputsResult{}
	err := c.call(ctx, MethodInputs, &InputsParams{
		Scope:        scope,
		TemplateRef:  templateRef,
		VersionLabel: versionLabel,
	}, res)
	if err != nil {
		return nil, err
	}
	if err := fromWire(res.Errors); err != nil {
		return nil, err
	}
	if res.Inputs == "" {
		return nil, nil
	}
	return parse.ParseString(res.Inputs)
}
