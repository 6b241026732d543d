package tree

import (
	"errors"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"

	"github.com/marcelocantos/minish/internal/ast"
)

// mainGlobal is the global a script binds its tree to.
const mainGlobal = "main"

// commandValue is the Starlark value wrapping a tree node.
type commandValue struct {
	node ast.Node
}

var _ starlark.Value = commandValue{}

func (c commandValue) String() string        { return c.node.String() }
func (c commandValue) Type() string          { return "command" }
func (c commandValue) Freeze()               {}
func (c commandValue) Truth() starlark.Bool  { return starlark.True }
func (c commandValue) Hash() (uint32, error) { return 0, errors.New("unhashable type: command") }

// parseStarlark runs a script with the tree constructors predeclared:
//
//	sh("sort -u", stdin="words.txt", stdout="out.txt")
//	sh("printf", "%s\n", "$HOME")
//	seq(a, b, ...)  par(a, b, ...)  and_then(a, b, ...)
//	or_else(a, b, ...)  pipe(a, b, ...)
//
// A single argument to sh is split like a shell command line; several are
// taken as the argument vector.
func (l *Loader) parseStarlark(name string, data []byte) (ast.Node, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	thread := &starlark.Thread{
		Name: "minish",
		Print: func(_ *starlark.Thread, msg string) {
			log.Info(msg, zap.String("script", name))
		},
	}

	predeclared := starlark.StringDict{
		"sh":       starlark.NewBuiltin("sh", shBuiltin),
		"seq":      operatorBuiltin("seq", ast.OpSequential),
		"par":      operatorBuiltin("par", ast.OpParallel),
		"and_then": operatorBuiltin("and_then", ast.OpAnd),
		"or_else":  operatorBuiltin("or_else", ast.OpOr),
		"pipe":     operatorBuiltin("pipe", ast.OpPipe),
	}

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name, data, predeclared)
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return nil, fmt.Errorf("run %s: %s", name, evalErr.Backtrace())
		}
		return nil, fmt.Errorf("run %s: %w", name, err)
	}

	v, ok := globals[mainGlobal]
	if !ok {
		return nil, fmt.Errorf("run %s: global %q not set", name, mainGlobal)
	}
	c, ok := v.(commandValue)
	if !ok {
		return nil, fmt.Errorf("run %s: %q is a %s, want command", name, mainGlobal, v.Type())
	}
	return c.node, nil
}

func shBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var stdin, stdout, stderr starlark.Value = starlark.None, starlark.None, starlark.None
	var appendOut bool
	if err := starlark.UnpackArgs(fn.Name(), nil, kwargs,
		"stdin?", &stdin, "stdout?", &stdout, "stderr?", &stderr, "append?", &appendOut); err != nil {
		return nil, err
	}

	argv := make([]string, len(args))
	for i, a := range args {
		s, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is a %s, want string", fn.Name(), i+1, a.Type())
		}
		argv[i] = s
	}

	var s *ast.Simple
	var err error
	if len(argv) == 1 {
		s, err = command(argv[0], nil)
	} else {
		s, err = command("", argv)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}

	for _, r := range []struct {
		key string
		v   starlark.Value
		dst *[]*ast.Word
	}{
		{"stdin", stdin, &s.In},
		{"stdout", stdout, &s.Out},
		{"stderr", stderr, &s.Err},
	} {
		targets, err := stringList(r.v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn.Name(), r.key, err)
		}
		*r.dst = words(targets)
	}
	if appendOut {
		s.Mode = ast.Append
	}
	return commandValue{node: s}, nil
}

func operatorBuiltin(name string, op ast.Op) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", fn.Name())
		}
		nodes := make([]ast.Node, len(args))
		for i, a := range args {
			c, ok := a.(commandValue)
			if !ok {
				return nil, fmt.Errorf("%s: argument %d is a %s, want command", fn.Name(), i+1, a.Type())
			}
			nodes[i] = c.node
		}
		node, err := fold(op, nodes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name(), err)
		}
		return commandValue{node: node}, nil
	})
}

// stringList accepts None, a string, or an iterable of strings.
func stringList(v starlark.Value) ([]string, error) {
	if v == starlark.None {
		return nil, nil
	}
	if s, ok := starlark.AsString(v); ok {
		return []string{s}, nil
	}
	iter, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("got %s, want string or list", v.Type())
	}
	it := iter.Iterate()
	defer it.Done()
	var out []string
	var x starlark.Value
	for it.Next(&x) {
		s, ok := starlark.AsString(x)
		if !ok {
			return nil, fmt.Errorf("got %s element, want string", x.Type())
		}
		out = append(out, s)
	}
	return out, nil
}
