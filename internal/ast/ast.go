// Package ast defines the command tree evaluated by the shell.
//
// A tree is built once per input by a loader, walked once by the evaluator,
// and never mutated in between.
package ast

import (
	"fmt"
	"strings"
)

// Op is the kind of an operator node.
type Op int

const (
	OpSequential Op = iota + 1 // a ; b
	OpParallel                 // a & b
	OpAnd                      // a && b
	OpOr                       // a || b
	OpPipe                     // a | b
)

func (o Op) String() string {
	switch o {
	case OpSequential:
		return ";"
	case OpParallel:
		return "&"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpPipe:
		return "|"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// IOMode selects how output and error redirections open their targets.
type IOMode int

const (
	Truncate IOMode = iota
	Append
)

// Node is either a *Simple or an *Operator.
type Node interface {
	fmt.Stringer
	node()
}

// Simple is a leaf command: one program invocation, builtin or assignment.
type Simple struct {
	Verb   *Word
	Params []*Word
	In     []*Word
	Out    []*Word
	Err    []*Word
	Mode   IOMode
}

// Operator composes exactly two subtrees.
type Operator struct {
	Op    Op
	Left  Node
	Right Node
}

func (*Simple) node()   {}
func (*Operator) node() {}

func (s *Simple) String() string {
	if s == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(s.Verb.String())
	for _, p := range s.Params {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	out := ">"
	if s.Mode == Append {
		out = ">>"
	}
	for _, w := range s.In {
		b.WriteString(" < ")
		b.WriteString(w.String())
	}
	for _, w := range s.Out {
		b.WriteString(" " + out + " ")
		b.WriteString(w.String())
	}
	for _, w := range s.Err {
		b.WriteString(" 2" + out + " ")
		b.WriteString(w.String())
	}
	return b.String()
}

func (o *Operator) String() string {
	if o == nil {
		return "<nil>"
	}
	left := render(o.Left)
	// Operators are left-associative, so a left child of the same kind
	// needs no parentheses.
	if l, ok := o.Left.(*Operator); ok && l.Op != o.Op {
		left = "(" + left + ")"
	}
	right := render(o.Right)
	if _, ok := o.Right.(*Operator); ok {
		right = "(" + right + ")"
	}
	if o.Op == OpSequential {
		return left + "; " + right
	}
	return left + " " + o.Op.String() + " " + right
}

func render(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

// Verbs returns the raw verbs of every leaf in left-to-right order.
func Verbs(n Node) []string {
	var verbs []string
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Simple:
			if n != nil {
				verbs = append(verbs, n.Verb.String())
			}
		case *Operator:
			if n != nil {
				walk(n.Left)
				walk(n.Right)
			}
		}
	}
	walk(n)
	return verbs
}
