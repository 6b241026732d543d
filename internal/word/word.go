// Package word turns command-tree words into strings.
//
// The evaluator depends only on the Resolver and ArgvBuilder interfaces;
// Expander is the implementation the shell ships with.
package word

import (
	"strings"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/proc"
)

// Resolver resolves a word to a single string. An empty result means the
// word is unset; it is never an error.
type Resolver interface {
	Resolve(pc proc.Context, w *ast.Word) string
}

// ArgvBuilder resolves a simple command to the argument vector used to
// start a program, verb first.
type ArgvBuilder interface {
	Argv(pc proc.Context, s *ast.Simple) []string
}

// Expander substitutes variable fragments from the process context.
// Unset variables expand to "".
type Expander struct{}

var (
	_ Resolver    = Expander{}
	_ ArgvBuilder = Expander{}
)

// Resolve implements Resolver.
func (Expander) Resolve(pc proc.Context, w *ast.Word) string {
	if w.Empty() {
		return ""
	}
	var b strings.Builder
	for _, p := range w.Parts {
		if p.Var {
			b.WriteString(pc.Getenv(p.Text))
		} else {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Argv implements ArgvBuilder.
func (x Expander) Argv(pc proc.Context, s *ast.Simple) []string {
	argv := make([]string, 0, len(s.Params)+1)
	argv = append(argv, x.Resolve(pc, s.Verb))
	for _, p := range s.Params {
		argv = append(argv, x.Resolve(pc, p))
	}
	return argv
}
