// Package pipeline evaluates command trees.
//
// Sequencing and short-circuit operators run on the caller's goroutine.
// Parallel and pipe operators evaluate each side in a clone of the process
// context on its own goroutine, the way a shell forks a child per branch;
// external programs are separate OS processes in every case.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/builtin"
	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/redirect"
	"github.com/marcelocantos/minish/internal/word"
)

// Evaluator walks command trees.
type Evaluator struct {
	builtins *builtin.Registry
	resolver word.Resolver
	argv     word.ArgvBuilder
	spawner  Spawner
	logger   *zap.Logger
	strict   bool

	redirect *redirect.Engine
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithBuiltins replaces the default builtin registry.
func WithBuiltins(r *builtin.Registry) Option {
	return func(e *Evaluator) { e.builtins = r }
}

// WithResolver replaces the word resolver.
func WithResolver(r word.Resolver) Option {
	return func(e *Evaluator) { e.resolver = r }
}

// WithArgvBuilder replaces the argument vector builder.
func WithArgvBuilder(b word.ArgvBuilder) Option {
	return func(e *Evaluator) { e.argv = b }
}

// WithSpawner replaces the process spawner.
func WithSpawner(s Spawner) Option {
	return func(e *Evaluator) { e.spawner = s }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithStrictRedirects makes a redirection that cannot be opened fail its
// command instead of being skipped.
func WithStrictRedirects(strict bool) Option {
	return func(e *Evaluator) { e.strict = strict }
}

// New creates an evaluator with the default builtins, word expansion and
// process spawner.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		builtins: builtin.Default(),
		resolver: word.Expander{},
		argv:     word.Expander{},
		spawner:  ExecSpawner{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.redirect = &redirect.Engine{
		Resolver: e.resolver,
		Logger:   e.logger,
		Strict:   e.strict,
	}
	return e
}

// Run evaluates node in pc and returns its exit status. The error is non-nil
// only when the tree ran exit or quit outside any concurrent branch; it is
// then a *builtin.ExitError and the status must be ignored.
//
// A nil node yields StatusFatal.
func (e *Evaluator) Run(ctx context.Context, pc proc.Context, node ast.Node) (int, error) {
	return e.eval(ctx, pc, node, frame{})
}

// frame is the position of a node in the tree. It only feeds log fields.
type frame struct {
	level  int
	parent *ast.Operator
}

func (f frame) child(parent *ast.Operator) frame {
	return frame{level: f.level + 1, parent: parent}
}

func (f frame) fields() []zap.Field {
	parent := "none"
	if f.parent != nil {
		parent = f.parent.Op.String()
	}
	return []zap.Field{zap.Int("level", f.level), zap.String("parent", parent)}
}

func (e *Evaluator) eval(ctx context.Context, pc proc.Context, node ast.Node, f frame) (int, error) {
	switch n := node.(type) {
	case *ast.Simple:
		if n != nil {
			return e.simple(ctx, pc, n, f)
		}
	case *ast.Operator:
		if n != nil {
			return e.operator(ctx, pc, n, f)
		}
	}
	e.logger.Error("malformed command tree: missing node", f.fields()...)
	return StatusFatal, nil
}

func (e *Evaluator) operator(ctx context.Context, pc proc.Context, op *ast.Operator, f frame) (int, error) {
	e.logger.Debug("operator", append(f.fields(), zap.Stringer("op", op.Op))...)
	sub := f.child(op)

	switch op.Op {
	case ast.OpSequential:
		if _, err := e.eval(ctx, pc, op.Left, sub); err != nil {
			return 0, err
		}
		return e.eval(ctx, pc, op.Right, sub)

	case ast.OpAnd:
		status, err := e.eval(ctx, pc, op.Left, sub)
		if err != nil || status != StatusOK {
			return status, err
		}
		return e.eval(ctx, pc, op.Right, sub)

	case ast.OpOr:
		status, err := e.eval(ctx, pc, op.Left, sub)
		if err != nil || status == StatusOK {
			return status, err
		}
		return e.eval(ctx, pc, op.Right, sub)

	case ast.OpParallel:
		return e.parallel(ctx, pc, op, sub), nil

	case ast.OpPipe:
		return e.pipe(ctx, pc, op, sub), nil

	default:
		e.logger.Error("malformed command tree: unknown operator", append(f.fields(), zap.Stringer("op", op.Op))...)
		return StatusFatal, nil
	}
}
