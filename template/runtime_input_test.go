package template

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stagecraft/tplmerge/ir"
)

func strPtr(s string) *string { return &s }

func TestParseRuntimeInput(t *testing.T) {
	tests := []struct {
		in      string
		want    *RuntimeInput
		wantErr bool
	}{
		{in: "<+input>", want: &RuntimeInput{}},
		{
			in:   "<+input>.allowedValues(a, b,c)",
			want: &RuntimeInput{AllowedValues: []string{"a", "b", "c"}, Validators: ".allowedValues(a, b,c)"},
		},
		{
			in:   "<+input>.regex(^v[0-9]{1,3}$)",
			want: &RuntimeInput{Regex: "^v[0-9]{1,3}$", Validators: ".regex(^v[0-9]{1,3}$)"},
		},
		{
			in:   "<+input>.default(dev).executionInput()",
			want: &RuntimeInput{Default: strPtr("dev"), ExecutionInput: true, Validators: ".default(dev).executionInput()"},
		},
		{in: "<+input>.bogus(x)", wantErr: true},
		{in: "<+input>.allowedValues()", wantErr: true},
		{in: "<+input>x", wantErr: true},
		{in: "value", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRuntimeInput(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuntimeInputValidate(t *testing.T) {
	allowed, err := ParseRuntimeInput("<+input>.allowedValues(1,2,true)")
	if err != nil {
		t.Fatal(err)
	}
	regex, err := ParseRuntimeInput("<+input>.regex(^[a-z]+$)")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		ri   *RuntimeInput
		val  *ir.Node
		ok   bool
	}{
		{name: "allowed number", ri: allowed, val: ir.FromInt(2), ok: true},
		{name: "allowed bool", ri: allowed, val: ir.FromBool(true), ok: true},
		{name: "disallowed", ri: allowed, val: ir.FromString("3"), ok: false},
		{name: "expression", ri: allowed, val: ir.FromString("<+stage.x>"), ok: true},
		{name: "map", ri: allowed, val: ir.FromKeyVals(nil), ok: true},
		{name: "regex match", ri: regex, val: ir.FromString("abc"), ok: true},
		{name: "regex mismatch", ri: regex, val: ir.FromString("ABC"), ok: false},
		{name: "no validators", ri: &RuntimeInput{}, val: ir.FromString("anything"), ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ri.Validate(tt.val)
			if tt.ok && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}
