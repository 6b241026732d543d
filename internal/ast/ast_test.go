package ast

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func simple(verb string, params ...string) *Simple {
	return &Simple{Verb: Lit(verb), Params: Words(params...)}
}

func TestRender(t *testing.T) {
	echo := simple("echo", "hello")
	echo.Params = append(echo.Params, Var("USER"))
	tr := simple("tr", "a-z", "A-Z")
	tr.Out = Words("out.txt")
	tr.Mode = Append
	assign := &Simple{Verb: &Word{Parts: []Part{{Text: "X"}, {Text: "="}, {Text: "1"}}}}
	cat := simple("cat")
	cat.In = Words("in.txt")
	cat.Err = Words("err.log")

	trees := []Node{
		&Operator{
			Op:    OpAnd,
			Left:  &Operator{Op: OpPipe, Left: echo, Right: tr},
			Right: &Operator{Op: OpSequential, Left: assign, Right: cat},
		},
		&Operator{
			Op:    OpSequential,
			Left:  &Operator{Op: OpSequential, Left: simple("a"), Right: simple("b")},
			Right: simple("c"),
		},
		&Operator{
			Op:    OpParallel,
			Left:  simple("x"),
			Right: &Operator{Op: OpOr, Left: simple("y"), Right: simple("z")},
		},
	}

	var lines []string
	for _, tree := range trees {
		lines = append(lines, tree.String())
	}

	g := goldie.New(t)
	g.Assert(t, "render", []byte(strings.Join(lines, "\n")+"\n"))
}

func TestVerbs(t *testing.T) {
	tree := &Operator{
		Op:    OpPipe,
		Left:  &Operator{Op: OpAnd, Left: simple("a"), Right: simple("b")},
		Right: simple("c"),
	}
	assert.Equal(t, []string{"a", "b", "c"}, Verbs(tree))
	assert.Nil(t, Verbs(nil))
}

func TestAssignment(t *testing.T) {
	tests := []struct {
		name  string
		word  *Word
		ok    bool
		key   string
		value string
	}{
		{"plain", &Word{Parts: []Part{{Text: "A"}, {Text: "="}, {Text: "b"}}}, true, "A", "b"},
		{"empty value", &Word{Parts: []Part{{Text: "A"}, {Text: "="}}}, true, "A", ""},
		{"variable value", &Word{Parts: []Part{{Text: "P"}, {Text: "="}, {Text: "HOME", Var: true}}}, true, "P", "${HOME}"},
		{"single literal", Lit("A=b"), false, "", ""},
		{"bad name", &Word{Parts: []Part{{Text: "1A"}, {Text: "="}, {Text: "b"}}}, false, "", ""},
		{"variable name", &Word{Parts: []Part{{Text: "A", Var: true}, {Text: "="}}}, false, "", ""},
		{"nil", nil, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, ok := tt.word.Assignment()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			if ok {
				assert.Equal(t, tt.value, value.String())
			}
		})
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "&&", OpAnd.String())
	assert.Equal(t, "op(42)", Op(42).String())
}
