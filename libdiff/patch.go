package libdiff

import (
	"bytes"
	"fmt"

	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/format"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/parse"

	jsonpatch "github.com/evanphx/json-patch"
)

// MergePatch returns the JSON merge patch taking from to to.
func MergePatch(from, to *ir.Node) (*ir.Node, error) {
	a, err := marshalJSON(from)
	if err != nil {
		return nil, err
	}
	b, err := marshalJSON(to)
	if err != nil {
		return nil, err
	}
	d, err := jsonpatch.CreateMergePatch(a, b)
	if err != nil {
		return nil, fmt.Errorf("creating merge patch: %w", err)
	}
	return parse.Parse(d, parse.ParseJSON())
}

// ApplyMergePatch applies a JSON merge patch to doc.
func ApplyMergePatch(doc, patch *ir.Node) (*ir.Node, error) {
	a, err := marshalJSON(doc)
	if err != nil {
		return nil, err
	}
	p, err := marshalJSON(patch)
	if err != nil {
		return nil, err
	}
	d, err := jsonpatch.MergePatch(a, p)
	if err != nil {
		return nil, fmt.Errorf("applying merge patch: %w", err)
	}
	return parse.Parse(d, parse.ParseJSON())
}

func marshalJSON(node *ir.Node) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(node, buf, encode.EncodeFormat(format.JSONFormat)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
