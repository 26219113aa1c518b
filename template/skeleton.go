package template

import (
	"github.com/stagecraft/tplmerge/ir"
)

// Reserved keys of a reference map.
const (
	TemplateKey       = "template"
	TemplateRefKey    = "templateRef"
	VersionLabelKey   = "versionLabel"
	TemplateInputsKey = "templateInputs"
)

// Keys kept beside runtime inputs: "identifier" in the map addressing an
// array element, and the reference keys of a nested reference map.
const identifierKey = "identifier"

var referenceKeys = []string{TemplateRefKey, VersionLabelKey}

// ExtractSkeleton returns the runtime inputs of body: the subset of body
// holding only runtime input leaves and the containers leading to them.
// It returns nil when body has no runtime inputs.
//
// Kept array elements also keep their "identifier", and kept reference
// maps keep "templateRef" and "versionLabel", so that both stay
// addressable. Key order is that of body. ExtractSkeleton does not modify
// body.
func ExtractSkeleton(body *ir.Node) *ir.Node {
	if body == nil {
		return nil
	}
	return skeleton(body, nil)
}

// skeleton extracts the skeleton of n. elem is the map carrying the
// identifier of the enclosing array element, if any.
func skeleton(n, elem *ir.Node) *ir.Node {
	switch n.Type {
	case ir.StringType:
		if IsRuntimeInput(n) {
			return ir.FromString(n.String)
		}
		return nil
	case ir.ObjectType:
		kept := make([]*ir.Node, len(n.Fields))
		found := false
		for i := range n.Fields {
			kept[i] = skeleton(n.Values[i], elem)
			if kept[i] != nil {
				found = true
			}
		}
		if !found {
			return nil
		}
		isRef := n.FieldIndex(TemplateRefKey) >= 0
		var kvs []ir.KeyVal
		for i, f := range n.Fields {
			v := kept[i]
			if v == nil && n.Values[i].Type.IsLeaf() && isAddressKey(f.String, n == elem, isRef) {
				v = n.Values[i].Clone()
			}
			if v == nil {
				continue
			}
			kvs = append(kvs, ir.KeyVal{Key: ir.FromString(f.String), Val: v})
		}
		return ir.FromKeyVals(kvs)
	case ir.ArrayType:
		var vals []*ir.Node
		for _, v := range n.Values {
			_, inner := elemIdentifier(v)
			if s := skeleton(v, inner); s != nil {
				vals = append(vals, s)
			}
		}
		if len(vals) == 0 {
			return nil
		}
		return ir.FromSlice(vals)
	default:
		return nil
	}
}

func isAddressKey(f string, isElem, isRef bool) bool {
	if isElem && f == identifierKey {
		return true
	}
	if !isRef {
		return false
	}
	for _, k := range referenceKeys {
		if k == f {
			return true
		}
	}
	return false
}

// hasRuntimeInput reports whether n or any of its descendants is a
// runtime input.
func hasRuntimeInput(n *ir.Node) bool {
	switch n.Type {
	case ir.StringType:
		return IsRuntimeInput(n)
	case ir.ObjectType, ir.ArrayType:
		for _, v := range n.Values {
			if hasRuntimeInput(v) {
				return true
			}
		}
	}
	return false
}

// detach returns a deep copy of n with no parent.
func detach(n *ir.Node) *ir.Node {
	if n == nil {
		return nil
	}
	res := n.Clone()
	res.Parent = nil
	res.ParentIndex = 0
	res.ParentField = ""
	return res
}
