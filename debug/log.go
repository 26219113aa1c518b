package debug

import (
	"bytes"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/ir"
)

type Node struct{ *ir.Node }

func (y Node) String() string {
	x := y.Node
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(x, buf); err != nil {
		return fmt.Sprintf("[raw *ir.Node] %v", x)
	}
	return buf.String()
}

func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch x := a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case *ir.Node:
			args[i] = Node{x}.String()
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
