package parse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/stagecraft/tplmerge/format"
	"github.com/stagecraft/tplmerge/ir"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Parse decodes a single document. An empty document parses to null.
func Parse(d []byte, opts ...ParseOption) (*ir.Node, error) {
	pOpts := &parseOpts{format: format.YAMLFormat}
	for _, f := range opts {
		f(pOpts)
	}
	switch pOpts.format {
	case format.JSONFormat:
		return parseJSON(d)
	default:
		return parseYAML(d)
	}
}

func ParseString(s string, opts ...ParseOption) (*ir.Node, error) {
	return Parse([]byte(s), opts...)
}

func parseYAML(d []byte) (*ir.Node, error) {
	var v any
	if err := yaml.UnmarshalWithOptions(d, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return FromAny(v)
}

// FromAny converts a decoded YAML or JSON value into a node. Maps must be
// yaml.MapSlice to keep key order; plain Go maps are accepted with keys
// sorted.
func FromAny(v any) (*ir.Node, error) {
	switch x := v.(type) {
	case nil:
		return ir.Null(), nil
	case yaml.MapSlice:
		kvs := make([]ir.KeyVal, 0, len(x))
		seen := make(map[string]bool, len(x))
		for _, item := range x {
			key := scalarKey(item.Key)
			if seen[key] {
				return nil, fmt.Errorf("%w: %w %q", ErrParse, ErrDuplicateKey, key)
			}
			seen[key] = true
			val, err := FromAny(item.Value)
			if err != nil {
				return nil, err
			}
			kvs = append(kvs, ir.KeyVal{Key: ir.FromString(key), Val: val})
		}
		return ir.FromKeyVals(kvs), nil
	case map[string]any:
		m := make(map[string]*ir.Node, len(x))
		for k, xv := range x {
			val, err := FromAny(xv)
			if err != nil {
				return nil, err
			}
			m[k] = val
		}
		return ir.FromMap(m), nil
	case []any:
		vals := make([]*ir.Node, len(x))
		for i := range x {
			val, err := FromAny(x[i])
			if err != nil {
				return nil, err
			}
			vals[i] = val
		}
		return ir.FromSlice(vals), nil
	case string:
		return ir.FromString(x), nil
	case bool:
		return ir.FromBool(x), nil
	case int:
		return ir.FromInt(int64(x)), nil
	case int64:
		return ir.FromInt(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return ir.FromNumber(strconv.FormatUint(x, 10)), nil
		}
		return ir.FromInt(int64(x)), nil
	case float64:
		return ir.FromFloat(x), nil
	case json.Number:
		return ir.FromNumber(x.String()), nil
	default:
		return ir.FromString(fmt.Sprint(x)), nil
	}
}

func scalarKey(k any) string {
	switch x := k.(type) {
	case string:
		return x
	case nil:
		return "null"
	default:
		return fmt.Sprint(x)
	}
}

func parseJSON(d []byte) (*ir.Node, error) {
	if len(bytes.TrimSpace(d)) == 0 {
		return ir.Null(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	res, err := jsonValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrParse)
	}
	return res, nil
}

func jsonValue(dec *json.Decoder) (*ir.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch x := tok.(type) {
	case json.Delim:
		switch x {
		case '{':
			return jsonObject(dec)
		case '[':
			return jsonArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", x)
		}
	default:
		return FromAny(x)
	}
}

func jsonObject(dec *json.Decoder) (*ir.Node, error) {
	var kvs []ir.KeyVal
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w %q", ErrDuplicateKey, key)
		}
		seen[key] = true
		val, err := jsonValue(dec)
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, ir.KeyVal{Key: ir.FromString(key), Val: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return ir.FromKeyVals(kvs), nil
}

func jsonArray(dec *json.Decoder) (*ir.Node, error) {
	vals := []*ir.Node{}
	for dec.More() {
		val, err := jsonValue(dec)
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return ir.FromSlice(vals), nil
}
