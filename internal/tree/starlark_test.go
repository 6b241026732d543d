package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/marcelocantos/minish/internal/ast"
)

func parseStar(t *testing.T, src string) (ast.Node, error) {
	t.Helper()
	l := &Loader{}
	return l.Parse("test.star", FormatStarlark, []byte(src))
}

func TestStarlark(t *testing.T) {
	src := `
count = sh("wc", "-l", stdout = "n.txt", append = True)
main = and_then(
    sh("cd /tmp"),
    pipe(sh("cat", stdin = ["a", "b"]), count),
    or_else(sh("false"), sh("X=$HOME")),
)
`
	got, err := parseStar(t, src)
	require.NoError(t, err)

	want := &ast.Operator{
		Op: ast.OpAnd,
		Left: &ast.Operator{
			Op:   ast.OpAnd,
			Left: simple("cd", "/tmp"),
			Right: &ast.Operator{
				Op:   ast.OpPipe,
				Left: &ast.Simple{Verb: ast.Lit("cat"), In: ast.Words("a", "b")},
				Right: &ast.Simple{
					Verb:   ast.Lit("wc"),
					Params: ast.Words("-l"),
					Out:    ast.Words("n.txt"),
					Mode:   ast.Append,
				},
			},
		},
		Right: &ast.Operator{
			Op:    ast.OpOr,
			Left:  simple("false"),
			Right: &ast.Simple{Verb: word(lit("X"), lit("="), vr("HOME"))},
		},
	}
	if diff := cmp.Diff(ast.Node(want), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStarlarkPrintIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Loader{Logger: zap.New(core)}
	_, err := l.Parse("p.star", FormatStarlark, []byte(`print("building")
main = sh("true")`))
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "building", logs.All()[0].Message)
}

func TestStarlarkErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"no main", `x = sh("ls")`, `global "main" not set`},
		{"main wrong type", `main = 1`, "want command"},
		{"non-string arg", `main = sh("ls", 1)`, "want string"},
		{"non-command operand", `main = seq(sh("ls"), "pwd")`, "want command"},
		{"empty operator", `main = par()`, "at least one"},
		{"bad redirect", `main = sh("ls", stdout = 3)`, "stdout"},
		{"unknown kwarg", `main = sh("ls", cwd = "/")`, "cwd"},
		{"syntax", `main = sh(`, "test.star"},
		{"unhashable", `main = {sh("ls"): 1}`, "unhashable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseStar(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
