package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/builtin"
	"github.com/marcelocantos/minish/internal/proc"
)

// simple runs one leaf. The decision is linear: terminal builtin, then
// assignment, then in-process builtin, then external program. At most one
// process is created.
func (e *Evaluator) simple(ctx context.Context, pc proc.Context, s *ast.Simple, f frame) (int, error) {
	verb := e.resolver.Resolve(pc, s.Verb)
	log := e.logger.With(append(f.fields(), zap.String("verb", verb))...)

	b, isBuiltin := e.builtins.Lookup(verb)
	if t, ok := b.(builtin.Terminal); isBuiltin && ok {
		log.Debug("terminal builtin")
		return t.Run(ctx, pc, []string{verb}, pc.Stdio())
	}

	if status, ok := builtin.Assign(pc, e.resolver, s.Verb); ok {
		log.Debug("assignment", zap.Int("status", status))
		return status, nil
	}

	streams, err := e.redirect.Apply(pc, s)
	if err != nil {
		fmt.Fprintf(writer(pc.Stdio().Err, os.Stderr), "minish: %v\n", err)
		return StatusFailure, nil
	}
	defer func() {
		if err := streams.Close(); err != nil {
			log.Warn("close redirections", zap.Error(err))
		}
	}()

	argv := e.argv.Argv(pc, s)
	if isBuiltin {
		status, err := b.Run(ctx, pc, argv, streams.Stdio)
		log.Debug("builtin", zap.Int("status", status))
		return status, err
	}

	dir, _ := pc.Getwd()
	status, err := e.spawner.Spawn(ctx, SpawnRequest{
		Argv:  argv,
		Dir:   dir,
		Env:   pc.Environ(),
		Stdio: streams.Stdio,
	})
	switch {
	case err == nil:
		log.Debug("exited", zap.Int("status", status))
		return status, nil
	case errors.Is(err, ErrExec):
		log.Debug("exec failed", zap.Error(err))
		fmt.Fprintf(writer(streams.Out, os.Stdout), "Execution failed for '%s'\n", verb)
		return StatusExecFailed, nil
	default:
		log.Error("spawn failed", zap.Error(err))
		return StatusFatal, nil
	}
}

func writer(f *os.File, fallback *os.File) io.Writer {
	if f == nil {
		return fallback
	}
	return f
}
