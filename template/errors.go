package template

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrInvalidReference     = errors.New("invalid template reference")
	ErrRecursionLimit       = errors.New("exponential template nesting")
	ErrMergeConflict        = errors.New("template inputs merge conflict")
	ErrRemoteReconciliation = errors.New("remote reconciliation failed")
	ErrInputValidation      = errors.New("template input validation failed")
)

// Error describes one failure at a reference site. Kind is one of the
// Err* sentinels above.
type Error struct {
	Kind    error
	FQN     string
	Ref     string
	Version string
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Kind.Error())
	if e.FQN != "" {
		fmt.Fprintf(b, " at %s", e.FQN)
	}
	if e.Ref != "" {
		fmt.Fprintf(b, " (%s", e.Ref)
		if e.Version != "" {
			fmt.Fprintf(b, "@%s", e.Version)
		}
		b.WriteString(")")
	}
	if e.Msg != "" {
		fmt.Fprintf(b, ": %s", e.Msg)
	}
	if e.Err != nil {
		fmt.Fprintf(b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Errors collects independent failures found in one document.
type Errors []*Error

// Error summarizes the first few entries.
func (es Errors) Error() string {
	if len(es) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(es), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(es[i].Error())
	}
	if len(es) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(es))
	}
	return b.String()
}

func (es Errors) Unwrap() []error {
	res := make([]error, len(es))
	for i, e := range es {
		res[i] = e
	}
	return res
}

// Err returns es as an error, or nil when empty.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// AsErrors extracts Errors from err.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}
	var es Errors
	if errors.As(err, &es) {
		return es, true
	}
	var e *Error
	if errors.As(err, &e) {
		return Errors{e}, true
	}
	return nil, false
}

// fatal reports whether e must abort the whole call rather than be
// collected.
func fatal(e *Error) bool {
	return e.Kind == ErrRecursionLimit || e.Kind == ErrRemoteReconciliation
}
