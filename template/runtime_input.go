package template

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/stagecraft/tplmerge/ir"
)

// InputMarker starts every runtime input value.
const InputMarker = "<+input>"

// IsRuntimeInput reports whether n is a runtime input placeholder.
func IsRuntimeInput(n *ir.Node) bool {
	if n == nil || n.Type != ir.StringType {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(n.String), InputMarker)
}

// isExpression reports whether v is resolved at execution time, such as
// "<+input>" or "<+pipeline.name>".
func isExpression(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), "<+")
}

// RuntimeInput is a parsed runtime input placeholder.
type RuntimeInput struct {
	AllowedValues  []string
	Regex          string
	Default        *string
	ExecutionInput bool

	// Validators is the text following InputMarker.
	Validators string
}

// ParseRuntimeInput parses v, which must start with InputMarker.
//
// Validator arguments are split on top level commas. A regex argument
// containing commas is rejoined.
func ParseRuntimeInput(v string) (*RuntimeInput, error) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, InputMarker) {
		return nil, fmt.Errorf("%q is not a runtime input", v)
	}
	res := &RuntimeInput{Validators: v[len(InputMarker):]}
	if res.Validators == "" {
		return res, nil
	}
	if res.Validators[0] != '.' {
		return nil, fmt.Errorf("runtime input %q: expected '.' after %s", v, InputMarker)
	}
	tag := "!" + res.Validators[1:]
	for tag != "" && tag != "!" {
		head, args, rest := ir.TagArgs(tag)
		switch head {
		case "!allowedValues":
			if len(args) == 0 {
				return nil, fmt.Errorf("runtime input %q: allowedValues without values", v)
			}
			for _, a := range args {
				res.AllowedValues = append(res.AllowedValues, strings.TrimSpace(a))
			}
		case "!regex":
			if len(args) == 0 {
				return nil, fmt.Errorf("runtime input %q: regex without pattern", v)
			}
			res.Regex = strings.Join(args, ",")
		case "!default":
			d := strings.Join(args, ",")
			res.Default = &d
		case "!executionInput":
			res.ExecutionInput = true
		default:
			return nil, fmt.Errorf("runtime input %q: unknown validator %q", v, strings.TrimPrefix(head, "!"))
		}
		tag = rest
	}
	return res, nil
}

// HasValidators reports whether values supplied for r are checked.
func (r *RuntimeInput) HasValidators() bool {
	return len(r.AllowedValues) != 0 || r.Regex != ""
}

type validatorEnv struct {
	Value   string   `expr:"value"`
	Allowed []string `expr:"allowed"`
	Pattern string   `expr:"pattern"`
}

type validatorPrograms struct {
	allowed *vm.Program
	regex   *vm.Program
}

var programs = sync.OnceValues(func() (*validatorPrograms, error) {
	res := &validatorPrograms{}
	var err error
	res.allowed, err = expr.Compile(`value in allowed`, expr.Env(validatorEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}
	res.regex, err = expr.Compile(`value matches pattern`, expr.Env(validatorEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}
	return res, nil
})

// Validate checks a concrete value supplied for r. Expressions and non
// scalar values are not checked.
func (r *RuntimeInput) Validate(val *ir.Node) error {
	if !r.HasValidators() {
		return nil
	}
	s, ok := scalarText(val)
	if !ok || isExpression(s) {
		return nil
	}
	progs, err := programs()
	if err != nil {
		return err
	}
	env := validatorEnv{Value: s, Allowed: r.AllowedValues, Pattern: r.Regex}
	if len(r.AllowedValues) != 0 {
		out, err := expr.Run(progs.allowed, env)
		if err != nil {
			return err
		}
		if !out.(bool) {
			return fmt.Errorf("value %q not in allowed values [%s]", s, strings.Join(r.AllowedValues, ", "))
		}
	}
	if r.Regex != "" {
		out, err := expr.Run(progs.regex, env)
		if err != nil {
			return fmt.Errorf("regex %q: %w", r.Regex, err)
		}
		if !out.(bool) {
			return fmt.Errorf("value %q does not match %q", s, r.Regex)
		}
	}
	return nil
}

func scalarText(n *ir.Node) (string, bool) {
	switch n.Type {
	case ir.StringType:
		return n.String, true
	case ir.BoolType:
		return strconv.FormatBool(n.Bool), true
	case ir.NumberType:
		switch {
		case n.Number != "":
			return n.Number, true
		case n.Int64 != nil:
			return strconv.FormatInt(*n.Int64, 10), true
		case n.Float64 != nil:
			return strconv.FormatFloat(*n.Float64, 'g', -1, 64), true
		}
	}
	return "", false
}
