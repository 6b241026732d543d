package pipeline

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/builtin"
	"github.com/marcelocantos/minish/internal/proc"
)

// branch evaluates node the way a forked child would: in its own copy of
// the process context, with exit ending only the branch.
func (e *Evaluator) branch(ctx context.Context, pc proc.Context, node ast.Node, f frame) int {
	status, err := e.eval(ctx, pc, node, f)
	var exitErr *builtin.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return status
}

// parallel runs both sides concurrently and waits for both. It succeeds only
// if both sides do.
func (e *Evaluator) parallel(ctx context.Context, pc proc.Context, op *ast.Operator, f frame) int {
	stdio := pc.Stdio()
	left, right := pc.Clone(stdio), pc.Clone(stdio)

	var ls, rs int
	var g errgroup.Group
	g.Go(func() error {
		ls = e.branch(ctx, left, op.Left, f)
		return nil
	})
	g.Go(func() error {
		rs = e.branch(ctx, right, op.Right, f)
		return nil
	})
	_ = g.Wait()

	e.logger.Debug("parallel done", append(f.fields(), zap.Int("left", ls), zap.Int("right", rs))...)
	if ls != StatusOK || rs != StatusOK {
		return StatusFailure
	}
	return StatusOK
}

// pipe connects the standard output of the left side to the standard input
// of the right side. Only the right side's status is reported.
//
// Each side owns one end of the pipe and closes it when its subtree is
// done, so the reader sees end-of-stream once every writer has exited.
func (e *Evaluator) pipe(ctx context.Context, pc proc.Context, op *ast.Operator, f frame) int {
	r, w, err := os.Pipe()
	if err != nil {
		e.logger.Error("create pipe", append(f.fields(), zap.Error(err))...)
		return StatusFailure
	}

	stdio := pc.Stdio()
	left := pc.Clone(proc.Stdio{In: stdio.In, Out: w, Err: stdio.Err})
	right := pc.Clone(proc.Stdio{In: r, Out: stdio.Out, Err: stdio.Err})

	var ls, rs int
	var g errgroup.Group
	g.Go(func() error {
		defer w.Close()
		ls = e.branch(ctx, left, op.Left, f)
		return nil
	})
	g.Go(func() error {
		defer r.Close()
		rs = e.branch(ctx, right, op.Right, f)
		return nil
	})
	_ = g.Wait()

	e.logger.Debug("pipe done", append(f.fields(), zap.Int("left", ls), zap.Int("right", rs))...)
	if rs != StatusOK {
		return StatusFailure
	}
	return StatusOK
}
