package tree

import (
	"strings"

	"github.com/marcelocantos/minish/internal/ast"
)

// ParseWord splits s into literal and variable fragments. $NAME and ${NAME}
// are variables; a "$" that starts neither is literal, and "$$" is a
// literal "$".
func ParseWord(s string) *ast.Word {
	w := &ast.Word{}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			w.Parts = append(w.Parts, ast.Part{Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '$' || i+1 == len(s) {
			lit.WriteByte(s[i])
			i++
			continue
		}
		switch next := s[i+1]; {
		case next == '$':
			lit.WriteByte('$')
			i += 2
		case next == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 || !ast.IsName(s[i+2:i+2+end]) {
				lit.WriteByte('$')
				i++
				continue
			}
			flush()
			w.Parts = append(w.Parts, ast.Part{Text: s[i+2 : i+2+end], Var: true})
			i += end + 3
		case isNameStart(next):
			j := i + 2
			for j < len(s) && isNameChar(s[j]) {
				j++
			}
			flush()
			w.Parts = append(w.Parts, ast.Part{Text: s[i+1 : j], Var: true})
			i = j
		default:
			lit.WriteByte('$')
			i++
		}
	}
	flush()
	if len(w.Parts) == 0 {
		w.Parts = []ast.Part{{}}
	}
	return w
}

// ParseVerb parses a command's first word. NAME=value is split into the
// name, a lone "=" fragment and the value's fragments, which is the shape
// the evaluator recognises as an assignment.
func ParseVerb(s string) *ast.Word {
	name, value, ok := strings.Cut(s, "=")
	if !ok || !ast.IsName(name) {
		return ParseWord(s)
	}
	parts := []ast.Part{{Text: name}, {Text: "="}}
	if value != "" {
		parts = append(parts, ParseWord(value).Parts...)
	}
	return &ast.Word{Parts: parts}
}

func isNameStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9'
}
