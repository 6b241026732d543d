package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelocantos/minish/internal/ast"
)

func TestParseYAML(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want ast.Node
	}{
		{
			name: "scalar",
			doc:  `echo 'hello world' $USER`,
			want: &ast.Simple{
				Verb:   ast.Lit("echo"),
				Params: []*ast.Word{ast.Lit("hello world"), ast.Var("USER")},
			},
		},
		{
			name: "argv with redirections",
			doc: `
argv: [sort, -u]
in: words.txt
out: [a.txt, b.txt]
err: errors.log
append: true
`,
			want: &ast.Simple{
				Verb:   ast.Lit("sort"),
				Params: ast.Words("-u"),
				In:     ast.Words("words.txt"),
				Out:    ast.Words("a.txt", "b.txt"),
				Err:    ast.Words("errors.log"),
				Mode:   ast.Append,
			},
		},
		{
			name: "top-level list is a sequence",
			doc:  "- X=1\n- run: env\n",
			want: &ast.Operator{
				Op:    ast.OpSequential,
				Left:  &ast.Simple{Verb: word(lit("X"), lit("="), lit("1"))},
				Right: simple("env"),
			},
		},
		{
			name: "nested operators",
			doc: `
and:
  - pipe:
      - printf 'a\nb\n'
      - run: cat
        out: out.txt
  - or: [false, true]
`,
			want: &ast.Operator{
				Op: ast.OpAnd,
				Left: &ast.Operator{
					Op:   ast.OpPipe,
					Left: simple("printf", `a\nb\n`),
					Right: &ast.Simple{
						Verb: ast.Lit("cat"),
						Out:  ast.Words("out.txt"),
					},
				},
				Right: &ast.Operator{Op: ast.OpOr, Left: simple("false"), Right: simple("true")},
			},
		},
		{
			name: "par folds left",
			doc:  "par: [a, b, c]",
			want: &ast.Operator{
				Op:    ast.OpParallel,
				Left:  &ast.Operator{Op: ast.OpParallel, Left: simple("a"), Right: simple("b")},
				Right: simple("c"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseYAML([]byte(tt.doc))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"empty", "", "empty document"},
		{"unknown key", "run: ls\nstdout: x\n", `unknown key "stdout"`},
		{"operator with extra key", "seq: [a, b]\nout: x\n", "cannot be combined"},
		{"operator needs list", "pipe: ls\n", "expects a list"},
		{"empty operator", "and: []\n", "at least one"},
		{"empty command", "run: ''\n", "empty command"},
		{"run and argv", "run: ls\nargv: [ls]\n", "mutually exclusive"},
		{"bad node", "seq:\n  - [a, b]\n", "line 2"},
		{"bad yaml", "run: [\n", "parse tree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
