package builtin

import (
	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/word"
)

// Assign binds name=value in pc when verb has the shape of an assignment.
// ok is false when verb is not an assignment, in which case nothing happens.
func Assign(pc proc.Context, r word.Resolver, verb *ast.Word) (status int, ok bool) {
	name, value, ok := verb.Assignment()
	if !ok {
		return 0, false
	}
	if err := pc.Setenv(name, r.Resolve(pc, value)); err != nil {
		return 1, true
	}
	return 0, true
}
