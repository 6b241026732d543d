package word

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/proc"
)

func TestResolve(t *testing.T) {
	pc := proc.New("/", []string{"NAME=world"}, proc.Stdio{})
	w := &ast.Word{Parts: []ast.Part{
		{Text: "hello-"},
		{Text: "NAME", Var: true},
		{Text: "-"},
		{Text: "UNSET", Var: true},
	}}

	assert.Equal(t, "hello-world-", Expander{}.Resolve(pc, w))
	assert.Equal(t, "", Expander{}.Resolve(pc, nil))
	assert.Equal(t, "", Expander{}.Resolve(pc, ast.Var("UNSET")))
}

func TestArgv(t *testing.T) {
	pc := proc.New("/", []string{"DIR=/tmp"}, proc.Stdio{})
	s := &ast.Simple{
		Verb:   ast.Lit("ls"),
		Params: []*ast.Word{ast.Lit("-l"), ast.Var("DIR"), ast.Var("UNSET")},
	}
	assert.Equal(t, []string{"ls", "-l", "/tmp", ""}, Expander{}.Argv(pc, s))
}
