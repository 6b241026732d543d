package tree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelocantos/minish/internal/ast"
)

func lit(s string) ast.Part { return ast.Part{Text: s} }
func vr(s string) ast.Part  { return ast.Part{Text: s, Var: true} }

func word(parts ...ast.Part) *ast.Word { return &ast.Word{Parts: parts} }

func simple(argv ...string) *ast.Simple {
	return &ast.Simple{Verb: ast.Lit(argv[0]), Params: ast.Words(argv[1:]...)}
}

func TestParseWord(t *testing.T) {
	tests := []struct {
		in   string
		want *ast.Word
	}{
		{"plain", word(lit("plain"))},
		{"", word(lit(""))},
		{"$HOME", word(vr("HOME"))},
		{"${HOME}/bin", word(vr("HOME"), lit("/bin"))},
		{"a$B_1c", word(lit("a"), vr("B_1c"))},
		{"cost: $$5", word(lit("cost: $5"))},
		{"$", word(lit("$"))},
		{"$1", word(lit("$1"))},
		{"${unterminated", word(lit("${unterminated"))},
		{"${bad-name}", word(lit("${bad-name}"))},
		{"$A$B", word(vr("A"), vr("B"))},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseWord(tt.in)); diff != "" {
			t.Errorf("ParseWord(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestParseVerb(t *testing.T) {
	tests := []struct {
		in   string
		want *ast.Word
	}{
		{"echo", word(lit("echo"))},
		{"X=1", word(lit("X"), lit("="), lit("1"))},
		{"X=", word(lit("X"), lit("="))},
		{"P=$HOME/x", word(lit("P"), lit("="), vr("HOME"), lit("/x"))},
		{"1X=2", word(lit("1X=2"))},
		{"=x", word(lit("=x"))},
	}
	for _, tt := range tests {
		got := ParseVerb(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseVerb(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}

	name, _, ok := ParseVerb("X=1").Assignment()
	assert.True(t, ok)
	assert.Equal(t, "X", name)
}

func TestFormatOf(t *testing.T) {
	for name, want := range map[string]Format{
		"a.yaml": FormatYAML, "b.YML": FormatYAML, "c.star": FormatStarlark,
	} {
		got, err := FormatOf(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	_, err := FormatOf("tree.json")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/t.yaml", []byte("run: echo hi\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/t.star", []byte(`main = sh("echo hi")`), 0o644))

	l := &Loader{Fs: fs}
	for _, path := range []string{"/t.yaml", "/t.star"} {
		got, err := l.LoadFile(path)
		require.NoError(t, err, path)
		if diff := cmp.Diff(ast.Node(simple("echo", "hi")), got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", path, diff)
		}
	}

	_, err := l.LoadFile("/missing.yaml")
	assert.Error(t, err)
}

func TestFold(t *testing.T) {
	a, b, c := simple("a"), simple("b"), simple("c")
	got, err := fold(ast.OpPipe, []ast.Node{a, b, c})
	require.NoError(t, err)
	want := &ast.Operator{Op: ast.OpPipe,
		Left:  &ast.Operator{Op: ast.OpPipe, Left: a, Right: b},
		Right: c,
	}
	if diff := cmp.Diff(ast.Node(want), got); diff != "" {
		t.Errorf("fold mismatch (-want +got):\n%s", diff)
	}

	one, err := fold(ast.OpAnd, []ast.Node{a})
	require.NoError(t, err)
	assert.Same(t, a, one)

	_, err = fold(ast.OpAnd, nil)
	assert.Error(t, err)
}

func TestCommandErrors(t *testing.T) {
	_, err := command("", nil)
	assert.Error(t, err)
	_, err = command("echo", []string{"echo"})
	assert.Error(t, err)
	_, err = command(`echo "unterminated`, nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrFormat))
}
