// Package tree loads command trees from documents.
//
// Two formats are understood: YAML documents (.yaml, .yml) describing the
// tree declaratively, and Starlark scripts (.star) that build it with
// constructor functions and bind the result to the global "main".
package tree

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/marcelocantos/minish/internal/ast"
)

// Format is a document format.
type Format int

const (
	FormatYAML Format = iota + 1
	FormatStarlark
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatStarlark:
		return "starlark"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ErrFormat is returned for documents whose format cannot be determined.
var ErrFormat = errors.New("unknown document format")

// FormatOf picks a format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".star", ".starlark":
		return FormatStarlark, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrFormat, name)
	}
}

// Loader reads tree documents.
type Loader struct {
	// Fs is the filesystem documents are read from. Nil means the OS.
	Fs afero.Fs

	// Logger receives output of Starlark print(). Nil discards it.
	Logger *zap.Logger
}

// LoadFile reads and parses the document at path.
func (l *Loader) LoadFile(path string) (ast.Node, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	return l.Parse(path, format, data)
}

// Parse parses data in the given format. name is used in error messages.
func (l *Loader) Parse(name string, format Format, data []byte) (ast.Node, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(data)
	case FormatStarlark:
		return l.parseStarlark(name, data)
	default:
		return nil, fmt.Errorf("%w: %v", ErrFormat, format)
	}
}

// fold combines nodes left to right under op: [a b c] becomes (a op b) op c.
func fold(op ast.Op, nodes []ast.Node) (ast.Node, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%q needs at least one command", op.String())
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = &ast.Operator{Op: op, Left: acc, Right: n}
	}
	return acc, nil
}

// command builds a simple command from a run string or an argument vector.
// Exactly one of run and argv must be set.
func command(run string, argv []string) (*ast.Simple, error) {
	if run != "" {
		if argv != nil {
			return nil, errors.New("run and argv are mutually exclusive")
		}
		words, err := shlex.Split(run, true)
		if err != nil {
			return nil, fmt.Errorf("split %q: %w", run, err)
		}
		argv = words
	}
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	s := &ast.Simple{Verb: ParseVerb(argv[0])}
	for _, a := range argv[1:] {
		s.Params = append(s.Params, ParseWord(a))
	}
	return s, nil
}

func words(ss []string) []*ast.Word {
	var ws []*ast.Word
	for _, s := range ss {
		ws = append(ws, ParseWord(s))
	}
	return ws
}
