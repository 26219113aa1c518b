package libdiff

import (
	"bytes"
	"strings"

	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/ir"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Colors renders the prefixed lines of a diff.
type Colors struct {
	Insert func(string, ...any) string
	Delete func(string, ...any) string
}

func NewColors() *Colors {
	return &Colors{
		Insert: color.GreenString,
		Delete: color.RedString,
	}
}

// Line is one line of a line diff.
type Line struct {
	Op   diffpatch.Operation
	Text string
}

// LineDiff diffs from and to line by line.
func LineDiff(from, to string) []Line {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	var res []Line
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		for _, ln := range strings.Split(text, "\n") {
			res = append(res, Line{Op: d.Type, Text: ln})
		}
	}
	return res
}

// Lines returns the line diff of the YAML encodings of from and to, with
// "+", "-" and " " prefixes. It returns "" when they encode identically.
// colors may be nil.
func Lines(from, to *ir.Node, colors *Colors) (string, error) {
	a, err := encode.String(from)
	if err != nil {
		return "", err
	}
	b, err := encode.String(to)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", nil
	}
	buf := bytes.NewBuffer(nil)
	for _, ln := range LineDiff(a, b) {
		switch ln.Op {
		case diffpatch.DiffInsert:
			s := "+ " + ln.Text
			if colors != nil {
				s = colors.Insert("%s", s)
			}
			buf.WriteString(s)
		case diffpatch.DiffDelete:
			s := "- " + ln.Text
			if colors != nil {
				s = colors.Delete("%s", s)
			}
			buf.WriteString(s)
		default:
			buf.WriteString("  " + ln.Text)
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}
