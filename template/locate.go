package template

import (
	"fmt"
	"strconv"

	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/ir/kpath"
)

// Reference is a template reference site within a document.
type Reference struct {
	// Owner is the map holding the "template" key.
	Owner *ir.Node
	// Node is the reference map itself.
	Node *ir.Node

	TemplateRef  string
	VersionLabel string
	// Inputs is the templateInputs map, or nil.
	Inputs *ir.Node

	// Path is the kinded path of Owner.
	Path string
	// FQN names Owner by map keys and array element identifiers, such as
	// "pipeline.stages.s1".
	FQN string
}

// FindReferences returns the references in doc in depth first pre-order.
// It does not descend into reference maps. Malformed references and
// duplicate FQNs are reported together as Errors; well formed references
// are returned regardless.
func FindReferences(doc *ir.Node) ([]*Reference, error) {
	l := newLocator(nil)
	if doc != nil {
		l.walk(doc, "")
	}
	return l.refs, l.errs.Err()
}

type locator struct {
	// skip reports owners that must be neither returned nor reported.
	skip func(owner *ir.Node) bool
	refs []*Reference
	errs Errors
	// bad holds the owners of malformed references.
	bad  []*ir.Node
	seen map[string]bool
}

func newLocator(skip func(*ir.Node) bool) *locator {
	return &locator{skip: skip, seen: map[string]bool{}}
}

func (l *locator) walk(n *ir.Node, fqn string) {
	switch n.Type {
	case ir.ObjectType:
		if i := n.FieldIndex(TemplateKey); i >= 0 && isReferenceShaped(n.Values[i]) {
			l.reference(n, n.Values[i], fqn)
		}
		for i, f := range n.Fields {
			if f.String == TemplateKey && isReferenceShaped(n.Values[i]) {
				continue
			}
			l.walk(n.Values[i], joinFQN(fqn, kpath.QuoteField(f.String)))
		}
	case ir.ArrayType:
		for i, v := range n.Values {
			id, inner := elemIdentifier(v)
			if id == "" {
				l.walk(v, fqn+"["+strconv.Itoa(i)+"]")
				continue
			}
			l.walk(inner, joinFQN(fqn, kpath.QuoteField(id)))
		}
	}
}

func (l *locator) reference(owner, tpl *ir.Node, fqn string) {
	if l.skip != nil && l.skip(owner) {
		return
	}
	if l.seen[fqn] {
		l.errs = append(l.errs, &Error{Kind: ErrInvalidReference, FQN: fqn, Msg: "duplicate reference site"})
		l.bad = append(l.bad, owner)
		return
	}
	l.seen[fqn] = true
	ref, err := newReference(owner, tpl)
	if err != nil {
		err.FQN = fqn
		l.errs = append(l.errs, err)
		l.bad = append(l.bad, owner)
		return
	}
	ref.FQN = fqn
	l.refs = append(l.refs, ref)
}

// isReferenceShaped reports whether v is meant as a reference map, well
// formed or not.
func isReferenceShaped(v *ir.Node) bool {
	if v.Type != ir.ObjectType {
		return false
	}
	for _, k := range []string{TemplateRefKey, VersionLabelKey, TemplateInputsKey} {
		if v.FieldIndex(k) >= 0 {
			return true
		}
	}
	return false
}

func newReference(owner, tpl *ir.Node) (*Reference, *Error) {
	ref := &Reference{Owner: owner, Node: tpl, Path: owner.KPath()}
	tr := ir.Get(tpl, TemplateRefKey)
	if tr == nil || tr.Type != ir.StringType || tr.String == "" {
		return nil, &Error{Kind: ErrInvalidReference, Msg: "templateRef must be a non-empty string"}
	}
	ref.TemplateRef = tr.String
	switch vl := ir.Get(tpl, VersionLabelKey); {
	case vl == nil, vl.Type == ir.NullType:
	case vl.Type == ir.StringType:
		ref.VersionLabel = vl.String
	case vl.Type == ir.NumberType:
		s, _ := scalarText(vl)
		ref.VersionLabel = s
	default:
		return nil, &Error{Kind: ErrInvalidReference, Ref: ref.TemplateRef, Msg: fmt.Sprintf("versionLabel must be a string, got %s", vl.Type)}
	}
	switch ti := ir.Get(tpl, TemplateInputsKey); {
	case ti == nil, ti.Type == ir.NullType:
	case ti.Type == ir.ObjectType:
		ref.Inputs = ti
	default:
		return nil, &Error{Kind: ErrInvalidReference, Ref: ref.TemplateRef, Version: ref.VersionLabel,
			Msg: fmt.Sprintf("templateInputs must be a map, got %s", ti.Type)}
	}
	return ref, nil
}

// elemIdentifier returns the identifier of an array element and the node
// that carries it. A single key wrapper such as {stage: {identifier: s1}}
// yields the wrapped map so that the wrapper key is elided.
func elemIdentifier(v *ir.Node) (string, *ir.Node) {
	if v.Type != ir.ObjectType {
		return "", nil
	}
	if id := ir.Get(v, "identifier"); id != nil && id.Type == ir.StringType && id.String != "" {
		return id.String, v
	}
	if len(v.Fields) != 1 {
		return "", nil
	}
	inner := v.Values[0]
	if inner.Type != ir.ObjectType {
		return "", nil
	}
	if id := ir.Get(inner, "identifier"); id != nil && id.Type == ir.StringType && id.String != "" {
		return id.String, inner
	}
	return "", nil
}

func joinFQN(prefix, suffix string) string {
	switch {
	case prefix == "":
		return suffix
	case suffix == "":
		return prefix
	case suffix[0] == '[':
		return prefix + suffix
	}
	return prefix + "." + suffix
}
