package encode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/stagecraft/tplmerge/format"
	"github.com/stagecraft/tplmerge/ir"
)

var ErrEncoding = errors.New("encoding error")

type EncState struct {
	col           int
	depth, indent int

	format format.Format

	Color func(ir.Type, ColorAttr, string) string
}

func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent: 2,
	}
	for _, opt := range opts {
		opt(es)
	}
	if node == nil {
		node = ir.Null()
	}
	var err error
	if es.format.IsJSON() {
		err = encodeJSON(node, w, es)
	} else {
		err = encodeYAML(node, w, es)
	}
	if err != nil {
		return err
	}
	return writeString(w, "\n")
}

func encodeYAML(node *ir.Node, w io.Writer, es *EncState) error {
	switch node.Type {
	case ir.ObjectType:
		if len(node.Fields) == 0 {
			return writeString(w, applyColor(es, ir.ObjectType, SepColor, "{}"))
		}
		for i, f := range node.Fields {
			if i != 0 {
				if err := writeNL(w, es); err != nil {
					return err
				}
			}
			if err := writeField(w, f.String, es); err != nil {
				return err
			}
			if err := yamlChild(node.Values[i], w, es, false); err != nil {
				return err
			}
		}
		return nil
	case ir.ArrayType:
		if len(node.Values) == 0 {
			return writeString(w, applyColor(es, ir.ArrayType, SepColor, "[]"))
		}
		for i, v := range node.Values {
			if i != 0 {
				if err := writeNL(w, es); err != nil {
					return err
				}
			}
			if err := writeString(w, applyColor(es, ir.ArrayType, SepColor, "-")); err != nil {
				return err
			}
			if err := yamlChild(v, w, es, true); err != nil {
				return err
			}
		}
		return nil
	default:
		s, err := yamlScalar(node)
		if err != nil {
			return err
		}
		return writeString(w, applyValueColor(es, node.Type, s))
	}
}

// yamlChild writes v after a "key:" or "-" prefix.
func yamlChild(v *ir.Node, w io.Writer, es *EncState, inSeq bool) error {
	empty := len(v.Values) == 0
	switch {
	case v.Type == ir.ObjectType && !empty && inSeq:
		// first field follows the dash on the same line
		if err := writeString(w, " "); err != nil {
			return err
		}
		es.depth++
		defer func() { es.depth-- }()
		return encodeYAML(v, w, es)
	case (v.Type == ir.ObjectType || v.Type == ir.ArrayType) && !empty:
		es.depth++
		defer func() { es.depth-- }()
		if err := writeNL(w, es); err != nil {
			return err
		}
		return encodeYAML(v, w, es)
	default:
		if err := writeString(w, " "); err != nil {
			return err
		}
		return encodeYAML(v, w, es)
	}
}

func writeField(w io.Writer, f string, es *EncState) error {
	q, err := quoteYAML(f)
	if err != nil {
		return err
	}
	return writeString(w, applyColor(es, ir.ObjectType, FieldColor, q)+applyColor(es, ir.ObjectType, SepColor, ":"))
}

func yamlScalar(node *ir.Node) (string, error) {
	switch node.Type {
	case ir.NullType:
		return "null", nil
	case ir.BoolType:
		return strconv.FormatBool(node.Bool), nil
	case ir.NumberType:
		return numberString(node, true)
	case ir.StringType:
		return quoteYAML(node.String)
	default:
		return "", fmt.Errorf("%w: unexpected node type %s", ErrEncoding, node.Type)
	}
}

// quoteYAML renders v as a single line YAML string scalar.
func quoteYAML(v string) (string, error) {
	if strings.ContainsAny(v, "\n\r") {
		return strconv.Quote(v), nil
	}
	d, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	s := strings.TrimSuffix(string(d), "\n")
	if s == "" || s[0] == '|' || s[0] == '>' || strings.Contains(s, "\n") {
		return strconv.Quote(v), nil
	}
	return s, nil
}

func numberString(node *ir.Node, yamlSpecial bool) (string, error) {
	switch {
	case node.Int64 != nil:
		return strconv.FormatInt(*node.Int64, 10), nil
	case node.Float64 != nil:
		f := *node.Float64
		switch {
		case math.IsInf(f, 1):
			if !yamlSpecial {
				return "", fmt.Errorf("%w: +Inf in json", ErrEncoding)
			}
			return ".inf", nil
		case math.IsInf(f, -1):
			if !yamlSpecial {
				return "", fmt.Errorf("%w: -Inf in json", ErrEncoding)
			}
			return "-.inf", nil
		case math.IsNaN(f):
			if !yamlSpecial {
				return "", fmt.Errorf("%w: NaN in json", ErrEncoding)
			}
			return ".nan", nil
		}
		if node.Number != "" {
			return node.Number, nil
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s, nil
	case node.Number != "":
		return node.Number, nil
	}
	return "", fmt.Errorf("%w: number node without value", ErrEncoding)
}

func encodeJSON(node *ir.Node, w io.Writer, es *EncState) error {
	switch node.Type {
	case ir.ObjectType:
		if len(node.Fields) == 0 {
			return writeString(w, applyColor(es, ir.ObjectType, SepColor, "{}"))
		}
		if err := writeString(w, applyColor(es, ir.ObjectType, SepColor, "{")); err != nil {
			return err
		}
		es.depth++
		for i, f := range node.Fields {
			if i != 0 {
				if err := writeString(w, applyColor(es, ir.ObjectType, SepColor, ",")); err != nil {
					return err
				}
			}
			if err := writeNL(w, es); err != nil {
				return err
			}
			q, err := quoteJSON(f.String)
			if err != nil {
				return err
			}
			if err := writeString(w, applyColor(es, ir.ObjectType, FieldColor, q)+applyColor(es, ir.ObjectType, SepColor, ":")+" "); err != nil {
				return err
			}
			if err := encodeJSON(node.Values[i], w, es); err != nil {
				return err
			}
		}
		es.depth--
		if err := writeNL(w, es); err != nil {
			return err
		}
		return writeString(w, applyColor(es, ir.ObjectType, SepColor, "}"))
	case ir.ArrayType:
		if len(node.Values) == 0 {
			return writeString(w, applyColor(es, ir.ArrayType, SepColor, "[]"))
		}
		if err := writeString(w, applyColor(es, ir.ArrayType, SepColor, "[")); err != nil {
			return err
		}
		es.depth++
		for i, v := range node.Values {
			if i != 0 {
				if err := writeString(w, applyColor(es, ir.ArrayType, SepColor, ",")); err != nil {
					return err
				}
			}
			if err := writeNL(w, es); err != nil {
				return err
			}
			if err := encodeJSON(v, w, es); err != nil {
				return err
			}
		}
		es.depth--
		if err := writeNL(w, es); err != nil {
			return err
		}
		return writeString(w, applyColor(es, ir.ArrayType, SepColor, "]"))
	case ir.NullType:
		return writeString(w, applyValueColor(es, ir.NullType, "null"))
	case ir.BoolType:
		return writeString(w, applyValueColor(es, ir.BoolType, strconv.FormatBool(node.Bool)))
	case ir.NumberType:
		s, err := numberString(node, false)
		if err != nil {
			return err
		}
		return writeString(w, applyValueColor(es, ir.NumberType, s))
	case ir.StringType:
		q, err := quoteJSON(node.String)
		if err != nil {
			return err
		}
		return writeString(w, applyValueColor(es, ir.StringType, q))
	default:
		return fmt.Errorf("%w: unexpected node type %s", ErrEncoding, node.Type)
	}
}

func quoteJSON(v string) (string, error) {
	d, err := json.MarshalWithOption(v, json.DisableHTMLEscape())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return string(d), nil
}

// Helper functions for writing
func writeNL(w io.Writer, es *EncState) error {
	indentString := strings.Repeat(" ", es.indent*es.depth)
	if err := writeString(w, "\n"+indentString); err != nil {
		return err
	}
	es.col = len(indentString)
	return nil
}

func writeString(w io.Writer, s string) error {
	_, err := w.Write([]byte(s))
	return err
}

func applyColor(es *EncState, nodeType ir.Type, attr ColorAttr, v string) string {
	if es.Color == nil {
		return v
	}
	return es.Color(nodeType, attr, v)
}

func applyValueColor(es *EncState, nodeType ir.Type, v string) string {
	return applyColor(es, nodeType, ValueColor, v)
}
