package ir

import (
	"maps"
	"slices"
	"strconv"
)

type Node struct {
	Type        Type
	Parent      *Node
	ParentIndex int
	ParentField string
	Fields      []*Node
	Values      []*Node

	Tag string

	String  string
	Bool    bool
	Number  string
	Float64 *float64
	Int64   *int64
}

func (y *Node) WithTag(tag string) *Node {
	y.Tag = tag
	return y
}

func (y *Node) Clone() *Node {
	res := &Node{}
	return y.CloneTo(res)
}

func (y *Node) CloneTo(dst *Node) *Node {
	dst.Parent = y.Parent
	dst.ParentIndex = y.ParentIndex
	dst.ParentField = y.ParentField
	dst.Type = y.Type
	dst.Tag = y.Tag
	dst.Values = nil
	dst.Fields = nil
	if y.Values != nil {
		dst.Values = make([]*Node, len(y.Values))
	}
	if y.Fields != nil {
		dst.Fields = make([]*Node, len(y.Fields))
	}
	for i, yv := range y.Values {
		dstI := &Node{}
		yv.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dstI.ParentField = yv.ParentField
		dst.Values[i] = dstI
	}
	for i, yf := range y.Fields {
		dstI := &Node{}
		yf.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dstI.ParentField = yf.String
		dst.Fields[i] = dstI
	}

	dst.String = y.String
	dst.Number = y.Number
	dst.Float64 = nil
	dst.Int64 = nil
	if y.Float64 != nil {
		f := *y.Float64
		dst.Float64 = &f
	}
	if y.Int64 != nil {
		i := *y.Int64
		dst.Int64 = &i
	}
	dst.Bool = y.Bool
	return dst
}

func FromString(v string) *Node {
	return FromStringAt(&Node{}, v)
}

func FromStringAt(p *Node, v string) *Node {
	p.Type = StringType
	p.String = v
	return p
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

// FromNumber creates a number node from its textual form, filling Int64 or
// Float64 when the text fits either.
func FromNumber(v string) *Node {
	res := &Node{Type: NumberType, Number: v}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		res.Int64 = &i
		return res
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		res.Float64 = &f
	}
	return res
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func Null() *Node {
	return &Node{Type: NullType}
}

// FromMap builds an object with keys in sorted order.
func FromMap(yMap map[string]*Node) *Node {
	keys := slices.Sorted(maps.Keys(yMap))
	kvs := make([]KeyVal, len(keys))
	for i, key := range keys {
		kvs[i] = KeyVal{Key: FromString(key), Val: yMap[key]}
	}
	return FromKeyVals(kvs)
}

type KeyVal struct {
	Key *Node
	Val *Node
}

func FromKeyVals(kvs []KeyVal) *Node {
	res := &Node{}
	return FromKeyValsAt(res, kvs)
}

func FromKeyValsAt(res *Node, kvs []KeyVal) *Node {
	res.Type = ObjectType
	res.Fields = make([]*Node, len(kvs))
	res.Values = make([]*Node, len(kvs))
	for i := range kvs {
		kv := &kvs[i]
		kv.Key.ParentField = kv.Key.String
		kv.Val.ParentField = kv.Key.String
		kv.Val.Parent = res
		kv.Val.ParentIndex = i
		kv.Key.Parent = res
		kv.Key.ParentIndex = i
		res.Fields[i] = kv.Key
		res.Values[i] = kv.Val
	}
	return res
}

// Object is shorthand for FromKeyVals with string keys taken pairwise
// from fields and values.
func Object(fields []string, values []*Node) *Node {
	kvs := make([]KeyVal, len(fields))
	for i, f := range fields {
		kvs[i] = KeyVal{Key: FromString(f), Val: values[i]}
	}
	return FromKeyVals(kvs)
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type: ArrayType,
	}
	res.Values = make([]*Node, len(ySlice))
	for i, y := range ySlice {
		res.Values[i] = y
		y.Parent = res
		y.ParentIndex = i
		y.ParentField = ""
	}
	return res
}

func Get(y *Node, field string) *Node {
	if y == nil || y.Type != ObjectType {
		return nil
	}
	i := y.FieldIndex(field)
	if i < 0 {
		return nil
	}
	return y.Values[i]
}

// FieldIndex returns the position of field in an object, or -1.
func (y *Node) FieldIndex(field string) int {
	for i := range y.Fields {
		if y.Fields[i].String == field {
			return i
		}
	}
	return -1
}

// Set replaces the value of field, appending the field if it is absent.
func (y *Node) Set(field string, val *Node) {
	val.Parent = y
	val.ParentField = field
	if i := y.FieldIndex(field); i >= 0 {
		val.ParentIndex = i
		y.Values[i] = val
		return
	}
	key := FromString(field)
	key.Parent = y
	key.ParentField = field
	key.ParentIndex = len(y.Fields)
	val.ParentIndex = len(y.Values)
	y.Fields = append(y.Fields, key)
	y.Values = append(y.Values, val)
}

// Delete removes field from an object, reporting whether it was present.
func (y *Node) Delete(field string) bool {
	i := y.FieldIndex(field)
	if i < 0 {
		return false
	}
	y.Fields = slices.Delete(y.Fields, i, i+1)
	y.Values = slices.Delete(y.Values, i, i+1)
	y.reindex()
	return true
}

// SetIndex replaces the i'th value of an array.
func (y *Node) SetIndex(i int, val *Node) {
	val.Parent = y
	val.ParentIndex = i
	val.ParentField = ""
	y.Values[i] = val
}

func (y *Node) reindex() {
	for i := range y.Values {
		y.Values[i].Parent = y
		y.Values[i].ParentIndex = i
		if i < len(y.Fields) {
			y.Fields[i].ParentIndex = i
		}
	}
}

// Replace puts with in the position y occupies in its parent. The root
// node cannot be replaced.
func (y *Node) Replace(with *Node) {
	p := y.Parent
	if p == nil {
		panic("ir: Replace on root node")
	}
	with.Parent = p
	with.ParentIndex = y.ParentIndex
	with.ParentField = y.ParentField
	p.Values[y.ParentIndex] = with
}

func (y *Node) Visit(f func(y *Node, isPost bool) (bool, error)) error {
	dive, err := f(y, false)
	if err != nil {
		return err
	}
	if dive {
		for _, yy := range y.Values {
			if err := yy.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(y, true); err != nil {
		return err
	}
	return nil
}

// Count returns the number of nodes in the tree rooted at y, keys excluded.
func (y *Node) Count() int {
	if y == nil {
		return 0
	}
	n := 1
	for _, v := range y.Values {
		n += v.Count()
	}
	return n
}

func (y *Node) Root() *Node {
	res := y
	for res.Parent != nil {
		res = res.Parent
	}
	return res
}

// StripTags clears Tag on every node of the tree rooted at y.
func (y *Node) StripTags() *Node {
	y.Visit(func(n *Node, isPost bool) (bool, error) {
		if !isPost {
			n.Tag = ""
		}
		return true, nil
	})
	return y
}
