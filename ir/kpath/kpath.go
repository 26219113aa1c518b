package kpath

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// KPath represents a kinded path. Kinded paths encode node kinds in the
// path syntax itself:
//   - "a.b" → Object accessed via ".b" (a is an object)
//   - "a[0]" → Array accessed via "[0]" (a is an array)
//
// The root path is represented by a nil *KPath.
type KPath struct {
	Field *string // Object field name
	Index *int    // Array index
	Next  *KPath  // Next segment in path (nil for leaf)
}

// String returns the kinded path string representation of this KPath.
//
//	KPath{Field: &"a", Next: &KPath{Field: &"b"}} → "a.b"
//	KPath{Field: &"a", Next: &KPath{Index: &0}} → "a[0]"
func (p *KPath) String() string {
	if p == nil {
		return ""
	}
	buf := bytes.NewBuffer(nil)
	for x := p; x != nil; x = x.Next {
		switch {
		case x.Field != nil:
			if buf.Len() > 0 {
				buf.WriteByte('.')
			}
			buf.WriteString(QuoteField(*x.Field))
		case x.Index != nil:
			fmt.Fprintf(buf, "[%d]", *x.Index)
		}
	}
	return buf.String()
}

// SegmentString returns the string form of the first segment only.
func (p *KPath) SegmentString() string {
	if p == nil {
		return ""
	}
	if p.Field != nil {
		return QuoteField(*p.Field)
	}
	if p.Index != nil {
		return fmt.Sprintf("[%d]", *p.Index)
	}
	return ""
}

// Last returns the final segment of p.
func (p *KPath) Last() *KPath {
	if p == nil {
		return nil
	}
	x := p
	for x.Next != nil {
		x = x.Next
	}
	return x
}

// Len returns the number of segments in p.
func (p *KPath) Len() int {
	n := 0
	for x := p; x != nil; x = x.Next {
		n++
	}
	return n
}

// Clone returns a deep copy of p.
func (p *KPath) Clone() *KPath {
	if p == nil {
		return nil
	}
	res := &KPath{}
	if p.Field != nil {
		f := *p.Field
		res.Field = &f
	}
	if p.Index != nil {
		i := *p.Index
		res.Index = &i
	}
	res.Next = p.Next.Clone()
	return res
}

// AppendField returns a copy of p with a field segment appended.
func (p *KPath) AppendField(field string) *KPath {
	return p.append(&KPath{Field: &field})
}

// AppendIndex returns a copy of p with an index segment appended.
func (p *KPath) AppendIndex(i int) *KPath {
	return p.append(&KPath{Index: &i})
}

func (p *KPath) append(seg *KPath) *KPath {
	res := p.Clone()
	if res == nil {
		return seg
	}
	res.Last().Next = seg
	return res
}

// Parse parses a kinded path string into a KPath structure.
//
//   - "a.b.c" → Object path with 3 segments
//   - "a[0][1]" → Array path with 3 segments
//   - `a."x.y"` → Field "x.y" (quoted because it contains a dot)
//   - "" → Root path (returns nil)
func Parse(kpath string) (*KPath, error) {
	if kpath == "" {
		return nil, nil
	}
	root := &KPath{}
	if err := parseKFrag(kpath, root, true); err != nil {
		return nil, fmt.Errorf("invalid kpath %q: %w", kpath, err)
	}
	return root, nil
}

// Join joins two kinded paths.
//
//   - Join("a", "b.c") → "a.b.c"
//   - Join("a", "[0]") → "a[0]"
//   - Join("", "b") → "b"
func Join(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	if suffix[0] == '[' {
		return prefix + suffix
	}
	return prefix + "." + suffix
}

// QuoteField quotes a field name when it would not parse back as a
// single field segment.
func QuoteField(f string) string {
	if f == "" || strings.ContainsAny(f, ".[]\"' \t\n") {
		return strconv.Quote(f)
	}
	return f
}

func parseKFrag(frag string, parent *KPath, top bool) error {
	if len(frag) == 0 {
		return nil
	}
	var rest string
	switch frag[0] {
	case '[':
		i := strings.IndexByte(frag, ']')
		if i == -1 {
			return fmt.Errorf("expected '[' <index> ']'")
		}
		u64, err := strconv.ParseUint(frag[1:i], 10, 31)
		if err != nil {
			return fmt.Errorf("invalid array index %q: %w", frag[1:i], err)
		}
		index := int(u64)
		parent.Index = &index
		rest = frag[i+1:]
	case '.':
		if top {
			return fmt.Errorf("unexpected leading '.'")
		}
		frag = frag[1:]
		fallthrough
	default:
		field, r, err := parseKField(frag)
		if err != nil {
			return err
		}
		parent.Field = &field
		rest = r
	}
	if len(rest) == 0 {
		return nil
	}
	if rest[0] != '.' && rest[0] != '[' {
		return fmt.Errorf("unexpected %q after segment", rest[0])
	}
	next := &KPath{}
	if err := parseKFrag(rest, next, false); err != nil {
		return err
	}
	parent.Next = next
	return nil
}

// parseKField parses an object field name from a fragment.
// It stops at '.' or '['.
func parseKField(frag string) (field, rest string, err error) {
	if len(frag) == 0 {
		return "", "", fmt.Errorf("expected field at end of string")
	}
	if frag[0] == '"' {
		end := quotedEnd(frag)
		if end < 0 {
			return "", "", fmt.Errorf("unterminated quoted field")
		}
		field, err := strconv.Unquote(frag[:end])
		if err != nil {
			return "", "", fmt.Errorf("invalid quoted field: %w", err)
		}
		return field, frag[end:], nil
	}
	i := strings.IndexAny(frag, ".[")
	if i == 0 {
		return "", "", fmt.Errorf("empty field")
	}
	if i == -1 {
		return frag, "", nil
	}
	return frag[:i], frag[i:], nil
}

// quotedEnd returns the length of the double quoted prefix of d, or -1.
func quotedEnd(d string) int {
	esc := false
	for i := 1; i < len(d); i++ {
		switch {
		case esc:
			esc = false
		case d[i] == '\\':
			esc = true
		case d[i] == '"':
			return i + 1
		}
	}
	return -1
}
