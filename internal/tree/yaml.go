package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/minish/internal/ast"
)

// ParseYAML parses a YAML tree document.
//
// A node is either a string (a command line), a mapping with "run" or "argv"
// and optional "in", "out", "err" and "append" keys, or a mapping with
// exactly one of "seq", "par", "and", "or" and "pipe" holding a list of
// nodes. A top-level list is a sequence.
//
//	pipe:
//	  - run: grep -v '^#' config.txt
//	  - run: sort
//	    out: sorted.txt
func ParseYAML(data []byte) (ast.Node, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse tree: empty document")
		}
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("parse tree: empty document")
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		return sequence(ast.OpSequential, root)
	}
	return yamlNode(root)
}

var yamlOps = map[string]ast.Op{
	"seq":  ast.OpSequential,
	"par":  ast.OpParallel,
	"and":  ast.OpAnd,
	"or":   ast.OpOr,
	"pipe": ast.OpPipe,
}

// yamlCommand is the mapping form of a simple command.
type yamlCommand struct {
	Run    string       `yaml:"run"`
	Argv   []string     `yaml:"argv"`
	In     stringOrList `yaml:"in"`
	Out    stringOrList `yaml:"out"`
	Err    stringOrList `yaml:"err"`
	Append bool         `yaml:"append"`
}

var commandKeys = map[string]bool{
	"run": true, "argv": true, "in": true, "out": true, "err": true, "append": true,
}

// stringOrList accepts a scalar or a list of scalars.
type stringOrList []string

func (s *stringOrList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*s = []string{n.Value}
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

func yamlNode(n *yaml.Node) (ast.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		s, err := command(n.Value, nil)
		if err != nil {
			return nil, lineError(n, err)
		}
		return s, nil
	case yaml.MappingNode:
	default:
		return nil, lineError(n, errors.New("expected a command or an operator"))
	}

	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}

	for i, k := range keys {
		op, ok := yamlOps[k]
		if !ok {
			continue
		}
		if len(keys) != 1 {
			return nil, lineError(n, fmt.Errorf("%q cannot be combined with other keys", k))
		}
		return sequence(op, n.Content[2*i+1])
	}

	for _, k := range keys {
		if !commandKeys[k] {
			return nil, lineError(n, fmt.Errorf("unknown key %q (want one of %s)", k, allKeys()))
		}
	}

	var c yamlCommand
	if err := n.Decode(&c); err != nil {
		return nil, lineError(n, err)
	}
	s, err := command(c.Run, c.Argv)
	if err != nil {
		return nil, lineError(n, err)
	}
	s.In, s.Out, s.Err = words(c.In), words(c.Out), words(c.Err)
	if c.Append {
		s.Mode = ast.Append
	}
	return s, nil
}

func sequence(op ast.Op, n *yaml.Node) (ast.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, lineError(n, fmt.Errorf("%q expects a list", op.String()))
	}
	nodes := make([]ast.Node, 0, len(n.Content))
	for _, c := range n.Content {
		child, err := yamlNode(c)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	folded, err := fold(op, nodes)
	if err != nil {
		return nil, lineError(n, err)
	}
	return folded, nil
}

func lineError(n *yaml.Node, err error) error {
	return fmt.Errorf("parse tree: line %d: %w", n.Line, err)
}

func allKeys() string {
	var ks []string
	for k := range commandKeys {
		ks = append(ks, k)
	}
	for k := range yamlOps {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return strings.Join(ks, ", ")
}
