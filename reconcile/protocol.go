package reconcile

import (
	"errors"

	"github.com/stagecraft/tplmerge/template"
)

const (
	MethodReconcile = "template/reconcile"
	MethodResolve   = "template/resolve"
	MethodRefresh   = "template/refresh"
	MethodInputs    = "template/inputs"
)

type ReconcileParams struct {
	AccountID string `json:"accountId"`
	OrgID     string `json:"orgId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Document  string `json:"document"`
}

type ReconcileResult struct {
	Document string      `json:"document,omitempty"`
	Errors   []WireError `json:"errors,omitempty"`
}

type ResolveParams struct {
	Scope                    template.ScopeRef `json:"scope"`
	Document                 string            `json:"document"`
	ReturnAnnotated          bool              `json:"returnAnnotated,omitempty"`
	AppendInputSetValidators bool              `json:"appendInputSetValidators,omitempty"`
}

type ResolveResult struct {
	Merged     string                      `json:"merged,omitempty"`
	Annotated  string                      `json:"annotated,omitempty"`
	References []template.ReferenceSummary `json:"references,omitempty"`
	Modules    []string                    `json:"modules,omitempty"`
	Errors     []WireError                 `json:"errors,omitempty"`
}

type RefreshParams struct {
	Scope                 template.ScopeRef `json:"scope"`
	Document              string            `json:"document"`
	CrossServiceReconcile bool              `json:"crossServiceReconcile,omitempty"`
}

type RefreshResult struct {
	Document string      `json:"document,omitempty"`
	Errors   []WireError `json:"errors,omitempty"`
}

type InputsParams struct {
	Scope        template.ScopeRef `json:"scope"`
	TemplateRef  string            `json:"templateRef"`
	VersionLabel string            `json:"versionLabel,omitempty"`
}

type InputsResult struct {
	// Inputs is empty when the template has no runtime inputs.
	Inputs string      `json:"inputs,omitempty"`
	Errors []WireError `json:"errors,omitempty"`
}

// WireError is a template.Error in transit.
type WireError struct {
	Kind    string `json:"kind"`
	FQN     string `json:"fqn,omitempty"`
	Ref     string `json:"ref,omitempty"`
	Version string `json:"version,omitempty"`
	Message string `json:"message,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

var kinds = map[string]error{
	"templateNotFound":     template.ErrTemplateNotFound,
	"invalidReference":     template.ErrInvalidReference,
	"recursionLimit":       template.ErrRecursionLimit,
	"mergeConflict":        template.ErrMergeConflict,
	"remoteReconciliation": template.ErrRemoteReconciliation,
	"inputValidation":      template.ErrInputValidation,
}

func kindName(kind error) string {
	for n, k := range kinds {
		if k == kind {
			return n
		}
	}
	return "unknown"
}

// toWire splits err into template errors, which are returned, and any
// other error, which is returned as rest.
func toWire(err error) (res []WireError, rest error) {
	es, ok := template.AsErrors(err)
	if !ok {
		return nil, err
	}
	for _, e := range es {
		w := WireError{
			Kind:    kindName(e.Kind),
			FQN:     e.FQN,
			Ref:     e.Ref,
			Version: e.Version,
			Message: e.Msg,
		}
		if e.Err != nil {
			w.Cause = e.Err.Error()
		}
		res = append(res, w)
	}
	return res, nil
}

// fromWire rebuilds template errors. A single entry is returned as
// *template.Error, several as template.Errors.
func fromWire(ws []WireError) error {
	if len(ws) == 0 {
		return nil
	}
	es := make(template.Errors, len(ws))
	for i, w := range ws {
		kind, ok := kinds[w.Kind]
		if !ok {
			kind = errors.New(w.Kind)
		}
		e := &template.Error{
			Kind:    kind,
			FQN:     w.FQN,
			Ref:     w.Ref,
			Version: w.Version,
			Msg:     w.Message,
		}
		if w.Cause != "" {
			e.Err = errors.New(w.Cause)
		}
		es[i] = e
	}
	if len(es) == 1 {
		return es[0]
	}
	return es
}
