package ir

import (
	"fmt"
	"strconv"

	"github.com/stagecraft/tplmerge/ir/kpath"
)

// KPath returns the kinded path string representation of this node's
// position in the tree.
//
// Examples:
//   - Root node → ""
//   - Object field "a" → "a"
//   - Array element at index 0 → "[0]"
//   - Mixed "a[0].b" → "a[0].b"
func (node *Node) KPath() string {
	if node.Parent == nil {
		return ""
	}
	switch node.Parent.Type {
	case ObjectType:
		return kpath.Join(node.Parent.KPath(), kpath.QuoteField(node.ParentField))
	case ArrayType:
		return node.Parent.KPath() + "[" + strconv.Itoa(node.ParentIndex) + "]"
	default:
		panic("parent but not in container")
	}
}

// GetKPath navigates the tree rooted at node using a kinded path. It
// returns the node itself (not a copy), or ErrNoPath if a segment is
// missing.
func (node *Node) GetKPath(kp string) (*Node, error) {
	p, err := kpath.Parse(kp)
	if err != nil {
		return nil, err
	}
	return node.Walk(p)
}

// Walk is GetKPath for an already parsed path.
func (node *Node) Walk(kp *kpath.KPath) (*Node, error) {
	res := node
	for ; kp != nil; kp = kp.Next {
		switch {
		case kp.Index != nil:
			if res.Type != ArrayType {
				return nil, fmt.Errorf("%w: expected array at %s, got %s", ErrNotArray, res.KPath(), res.Type)
			}
			index := *kp.Index
			if index < 0 || index >= len(res.Values) {
				return nil, fmt.Errorf("%w: index out of bounds %d (len %d)", ErrNoPath, index, len(res.Values))
			}
			res = res.Values[index]
		case kp.Field != nil:
			if res.Type != ObjectType {
				return nil, fmt.Errorf("%w: expected object at %s, got %s", ErrNotObject, res.KPath(), res.Type)
			}
			next := Get(res, *kp.Field)
			if next == nil {
				return nil, fmt.Errorf("%w: no field %q at %s", ErrNoPath, *kp.Field, res.KPath())
			}
			res = next
		default:
			return nil, fmt.Errorf("empty path segment")
		}
	}
	return res, nil
}
