package ast

import "strings"

// Part is one fragment of a word: literal text, or the name of a variable
// whose value is substituted at resolution time.
type Part struct {
	Text string
	Var  bool
}

// Word is an ordered sequence of fragments resolved to a single string.
type Word struct {
	Parts []Part
}

// Lit returns a word consisting of a single literal fragment.
func Lit(s string) *Word {
	return &Word{Parts: []Part{{Text: s}}}
}

// Var returns a word consisting of a single variable fragment.
func Var(name string) *Word {
	return &Word{Parts: []Part{{Text: name, Var: true}}}
}

// Words converts literals to words.
func Words(ss ...string) []*Word {
	ws := make([]*Word, len(ss))
	for i, s := range ss {
		ws[i] = Lit(s)
	}
	return ws
}

// String renders the word with variables written as ${NAME}.
func (w *Word) String() string {
	if w == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range w.Parts {
		if p.Var {
			b.WriteString("${" + p.Text + "}")
		} else {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Empty reports whether the word has no fragments.
func (w *Word) Empty() bool {
	return w == nil || len(w.Parts) == 0
}

// Assignment reports whether the word has the shape name=value: a literal
// identifier fragment followed by a literal "=" fragment. The returned value
// word holds the remaining fragments.
func (w *Word) Assignment() (name string, value *Word, ok bool) {
	if w == nil || len(w.Parts) < 2 {
		return "", nil, false
	}
	first, eq := w.Parts[0], w.Parts[1]
	if first.Var || eq.Var || eq.Text != "=" || !IsName(first.Text) {
		return "", nil, false
	}
	return first.Text, &Word{Parts: w.Parts[2:]}, true
}

// IsName reports whether s is a valid environment variable name.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
