// Package session evaluates top-level command trees on behalf of a front
// end, tagging each evaluation with a run id and recording it in the audit
// log.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/audit"
	"github.com/marcelocantos/minish/internal/builtin"
	"github.com/marcelocantos/minish/internal/pipeline"
	"github.com/marcelocantos/minish/internal/proc"
)

// Result is the outcome of one evaluation.
type Result struct {
	Run    string
	Status int
	// Exited is set when the tree ran exit or quit at top level. Status is
	// then the requested exit code.
	Exited bool
}

// Session evaluates trees with shared settings.
type Session struct {
	Logger *zap.Logger
	// Audit, when set, receives one entry per evaluation.
	Audit *audit.Logger
	// Options are applied to every evaluator the session creates.
	Options []pipeline.Option
}

// Run evaluates node in pc. source names where the tree came from.
func (s *Session) Run(ctx context.Context, pc proc.Context, source string, node ast.Node) Result {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	res := Result{Run: uuid.NewString()}
	logger = logger.With(zap.String("run", res.Run), zap.String("source", source))

	opts := append([]pipeline.Option{pipeline.WithLogger(logger)}, s.Options...)
	ev := pipeline.New(opts...)

	cwd, _ := pc.Getwd()
	start := time.Now()
	status, err := ev.Run(ctx, pc, node)
	duration := time.Since(start)

	var exitErr *builtin.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.Status, res.Exited = exitErr.Code, true
		err = nil
	case err != nil:
		res.Status = pipeline.StatusFatal
	default:
		res.Status = status
	}
	logger.Debug("evaluated", zap.Int("status", res.Status), zap.Bool("exited", res.Exited), zap.Duration("duration", duration))

	if s.Audit != nil {
		rec := audit.Record{
			Run:      res.Run,
			Source:   source,
			Status:   res.Status,
			Exited:   res.Exited,
			Err:      err,
			Duration: duration,
			Cwd:      cwd,
		}
		if node != nil {
			rec.Tree = node.String()
			rec.Verbs = ast.Verbs(node)
		}
		// Audit failures never fail the command.
		if aerr := s.Audit.Log(rec); aerr != nil {
			logger.Warn("audit", zap.Error(aerr))
		}
	}
	return res
}
