package ir

import (
	"strings"
)

// TagArgs splits a tag like "!head(a,b).rest(c)" into its head "!head",
// the arguments of the head and the remaining tag "!rest(c)".
func TagArgs(tag string) (string, []string, string) {
	var (
		head, rest string
		args       []string
		n          = len(tag)
		c          byte
		depth      int
		open       int
		argStart   int
	)
	for i := 0; i < n; i++ {
		c = tag[i]
		switch c {
		case '.':
			if depth != 0 {
				continue
			}
			if open != 0 {
				head = tag[:open]
			} else {
				head = tag[:i]
			}
			if i < n {
				rest = tag[i+1:]
			}
			return head, args, "!" + rest
		case '(':
			if depth == 0 {
				open = i
				argStart = i + 1
			}
			depth++
		case ')':
			depth--
			if depth != 0 {
				continue
			}
			if i != argStart && argStart != 0 {
				args = append(args, tag[argStart:i])
			}
			argStart = 0
		case ',':
			if depth != 1 {
				continue
			}
			if argStart != 0 {
				args = append(args, tag[argStart:i])
			}
			argStart = i + 1
		}
	}
	if open != 0 {
		head = tag[:open]
	} else {
		head = tag
	}
	return head, args, rest
}

func TagCompose(tag string, args []string, oTag string) string {
	headTag := tag
	if len(args) != 0 {
		headTag += "(" + strings.Join(args, ",") + ")"
	}
	if oTag != "" {
		return headTag + "." + oTag[1:]
	}
	return headTag
}

// TagHas: what should be ! prefixed
func TagHas(tag, what string) bool {
	for tag != "" {
		hd, _, rest := TagArgs(tag)
		if hd == what {
			return true
		}
		tag = rest
	}
	return false
}

func TagGet(tag, what string) (string, []string) {
	for tag != "" {
		head, args, rest := TagArgs(tag)
		if head == what {
			return head, args
		}
		tag = rest
	}
	return "", nil
}
