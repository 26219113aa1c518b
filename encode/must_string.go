package encode

import (
	"bytes"
	"strings"

	"github.com/stagecraft/tplmerge/ir"
)

func MustString(node *ir.Node) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}

// String encodes node as YAML.
func String(node *ir.Node) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
