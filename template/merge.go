package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stagecraft/tplmerge/debug"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/ir/kpath"
)

// inputMerger merges caller templateInputs onto an expanded template
// body.
//
//   - runtime input leaves of the body take the caller value
//   - fixed body values, and subtrees holding no runtime input, are kept
//   - paths only in the inputs are ignored
//   - maps merge key by key
//   - arrays merge by identifier, or by position when both have the
//     same length, and are otherwise replaced
//
// A "template" map in the inputs at a place where the body holds an
// already expanded reference has its templateInputs merged into the
// expanded owner.
type inputMerger struct {
	fqn              string
	appendValidators bool
	errs             Errors
}

func (m *inputMerger) merge(dst, src *ir.Node, path string) *ir.Node {
	if src == nil || src.Type == ir.NullType {
		return dst
	}
	if !dst.Type.IsLeaf() && !hasRuntimeInput(dst) {
		if debug.Merge() {
			debug.Logf("merge %s: ignoring input for fixed %s\n", m.fqn, displayPath(path))
		}
		return dst
	}
	switch {
	case dst.Type.IsLeaf():
		return m.leaf(dst, src, path)
	case dst.Type == ir.ObjectType && src.Type == ir.ObjectType:
		for i, f := range src.Fields {
			name, sv := f.String, src.Values[i]
			j := dst.FieldIndex(name)
			if j >= 0 {
				dst.Set(name, m.merge(dst.Values[j], sv, kpath.Join(path, kpath.QuoteField(name))))
				continue
			}
			if name == TemplateKey && ir.TagHas(dst.Tag, annotationTag) {
				if ti := ir.Get(sv, TemplateInputsKey); ti != nil && ti.Type == ir.ObjectType {
					m.merge(dst, ti, path)
				}
				continue
			}
			if debug.Merge() {
				debug.Logf("merge %s: ignoring stale input %s\n", m.fqn, kpath.Join(path, kpath.QuoteField(name)))
			}
		}
		return dst
	case dst.Type == ir.ArrayType && src.Type == ir.ArrayType:
		return m.array(dst, src, path)
	}
	if debug.Merge() {
		debug.Logf("merge %s: ignoring %s input for %s at %s\n", m.fqn, src.Type, dst.Type, path)
	}
	return dst
}

func (m *inputMerger) leaf(dst, src *ir.Node, path string) *ir.Node {
	if !IsRuntimeInput(dst) {
		if debug.Merge() {
			debug.Logf("merge %s: ignoring input for fixed %s\n", m.fqn, displayPath(path))
		}
		return dst
	}
	ri, err := ParseRuntimeInput(dst.String)
	if err != nil {
		m.fail(path, err)
		return detach(src)
	}
	if m.appendValidators && src.Type == ir.StringType && strings.TrimSpace(src.String) == InputMarker && ri.Validators != "" {
		return ir.FromString(InputMarker + ri.Validators)
	}
	if err := ri.Validate(src); err != nil {
		m.fail(path, err)
	}
	return detach(src)
}

func (m *inputMerger) array(dst, src *ir.Node, path string) *ir.Node {
	if _, ok := identified(dst); ok {
		if sIDs, ok := identified(src); ok {
			for i, v := range dst.Values {
				id, _ := elemIdentifier(v)
				if k, ok := sIDs[id]; ok {
					dst.SetIndex(i, m.merge(dst.Values[i], src.Values[k], indexPath(path, i)))
				}
			}
			return dst
		}
	}
	if len(dst.Values) == len(src.Values) {
		for i := range dst.Values {
			dst.SetIndex(i, m.merge(dst.Values[i], src.Values[i], indexPath(path, i)))
		}
		return dst
	}
	return detach(src)
}

func (m *inputMerger) fail(path string, err error) {
	m.errs = append(m.errs, &Error{
		Kind: ErrInputValidation,
		FQN:  m.fqn,
		Msg:  fmt.Sprintf("input %s", displayPath(path)),
		Err:  err,
	})
}

// skeletonMerger carries existing templateInputs over to a newly
// extracted skeleton.
//
//   - values at paths still in the skeleton are kept
//   - paths no longer in the skeleton are dropped
//   - new paths take their placeholder
//
// Old key order is preserved and new keys are appended. Address keys
// such as "identifier" take the skeleton value where the old inputs have
// them and are not added where they do not.
type skeletonMerger struct {
	fqn  string
	errs Errors
}

func (m *skeletonMerger) merge(old, cur *ir.Node, path string) *ir.Node {
	if old == nil || old.Type == ir.NullType {
		return cur
	}
	switch cur.Type {
	case ir.ObjectType:
		if old.Type != ir.ObjectType {
			return m.mismatch(old, cur, path)
		}
		kvs := make([]ir.KeyVal, 0, len(cur.Fields))
		for i, f := range old.Fields {
			j := cur.FieldIndex(f.String)
			if j < 0 {
				if debug.Refresh() {
					debug.Logf("refresh %s: dropping %s\n", m.fqn, kpath.Join(path, kpath.QuoteField(f.String)))
				}
				continue
			}
			v := m.merge(old.Values[i], cur.Values[j], kpath.Join(path, kpath.QuoteField(f.String)))
			kvs = append(kvs, ir.KeyVal{Key: ir.FromString(f.String), Val: v})
		}
		for i, f := range cur.Fields {
			v := cur.Values[i]
			if old.FieldIndex(f.String) >= 0 {
				continue
			}
			// address keys are carried, never introduced
			if v.Type.IsLeaf() && !IsRuntimeInput(v) {
				continue
			}
			kvs = append(kvs, ir.KeyVal{Key: ir.FromString(f.String), Val: v})
		}
		return ir.FromKeyVals(kvs)
	case ir.ArrayType:
		if old.Type != ir.ArrayType {
			return m.mismatch(old, cur, path)
		}
		vals := make([]*ir.Node, len(cur.Values))
		_, cok := identified(cur)
		oIDs, ook := identified(old)
		if cok && ook {
			for i, v := range cur.Values {
				id, _ := elemIdentifier(v)
				vals[i] = v
				if k, ok := oIDs[id]; ok {
					vals[i] = m.merge(old.Values[k], cur.Values[i], indexPath(path, i))
				}
			}
			return ir.FromSlice(vals)
		}
		for i, v := range cur.Values {
			vals[i] = v
			if i < len(old.Values) {
				vals[i] = m.merge(old.Values[i], v, indexPath(path, i))
			}
		}
		return ir.FromSlice(vals)
	default:
		if IsRuntimeInput(cur) {
			return detach(old)
		}
		return cur
	}
}

// mismatch handles an old value whose shape no longer fits the skeleton.
// An old runtime expression defers the whole block and yields to the
// skeleton.
func (m *skeletonMerger) mismatch(old, cur *ir.Node, path string) *ir.Node {
	if old.Type == ir.StringType && isExpression(old.String) {
		return cur
	}
	m.errs = append(m.errs, &Error{
		Kind: ErrMergeConflict,
		FQN:  m.fqn,
		Msg:  fmt.Sprintf("input %s: existing %s value cannot hold new %s", displayPath(path), old.Type, cur.Type),
	})
	return cur
}

// identified maps identifiers to positions when every element of arr has
// a distinct identifier.
func identified(arr *ir.Node) (map[string]int, bool) {
	if len(arr.Values) == 0 {
		return nil, false
	}
	res := make(map[string]int, len(arr.Values))
	for i, v := range arr.Values {
		id, _ := elemIdentifier(v)
		if id == "" {
			return nil, false
		}
		if _, dup := res[id]; dup {
			return nil, false
		}
		res[id] = i
	}
	return res, true
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
