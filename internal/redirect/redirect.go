// Package redirect binds the standard streams of a simple command to the
// files named by its redirections.
package redirect

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/word"
)

// ErrAmbiguous is returned for a redirection target that resolves to "".
var ErrAmbiguous = errors.New("ambiguous redirect")

// Engine applies redirections. The zero value is usable: it resolves words
// with word.Expander, discards logs and skips targets that fail to open.
type Engine struct {
	Resolver word.Resolver
	Logger   *zap.Logger

	// Strict makes the first failed open abort Apply instead of leaving
	// the stream unredirected.
	Strict bool
}

// Streams is the stream set of exactly one command. Files opened by Apply
// are owned by the set and released by Close.
type Streams struct {
	proc.Stdio

	in, out, err *os.File
}

// Close releases every file the set opened. It is safe to call twice.
func (s *Streams) Close() error {
	err := closeFile(s.in)
	err = multierr.Append(err, closeFile(s.out))
	if s.err != s.out {
		err = multierr.Append(err, closeFile(s.err))
	}
	s.in, s.out, s.err = nil, nil, nil
	return err
}

// Apply returns the streams s runs with: those of pc, rebound per the
// redirections of s. pc itself is not modified.
//
// Each redirection list is applied in order and every successful open
// replaces the previous binding; replaced files are closed at once. An error
// target whose canonical path is that of the bound output file shares the
// output file instead of opening (and truncating) it a second time.
func (e *Engine) Apply(pc proc.Context, s *ast.Simple) (*Streams, error) {
	st := &Streams{Stdio: pc.Stdio()}

	for _, w := range s.In {
		f, err := e.open(pc, w, os.O_RDONLY)
		if err != nil {
			if e.Strict {
				st.Close()
				return nil, err
			}
			continue
		}
		e.release(st.in)
		st.in, st.Stdio.In = f, f
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if s.Mode == ast.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	var outPath string
	for _, w := range s.Out {
		f, err := e.open(pc, w, flags)
		if err != nil {
			if e.Strict {
				st.Close()
				return nil, err
			}
			continue
		}
		e.release(st.out)
		st.out, st.Stdio.Out = f, f
		outPath = canonical(f.Name())
	}

	for _, w := range s.Err {
		if st.out != nil && outPath != "" {
			name := e.resolver().Resolve(pc, w)
			if name != "" && canonical(proc.Abs(pc, name)) == outPath {
				if st.err != st.out {
					e.release(st.err)
				}
				st.err, st.Stdio.Err = st.out, st.out
				continue
			}
		}
		f, err := e.open(pc, w, flags)
		if err != nil {
			if e.Strict {
				st.Close()
				return nil, err
			}
			continue
		}
		if st.err != st.out {
			e.release(st.err)
		}
		st.err, st.Stdio.Err = f, f
	}

	return st, nil
}

func (e *Engine) open(pc proc.Context, w *ast.Word, flags int) (*os.File, error) {
	name := e.resolver().Resolve(pc, w)
	if name == "" {
		err := &os.PathError{Op: "open", Path: w.String(), Err: ErrAmbiguous}
		e.logger().Warn("redirect open failed", zap.Bool("strict", e.Strict), zap.Error(err))
		return nil, err
	}
	f, err := os.OpenFile(proc.Abs(pc, name), flags, 0644)
	if err != nil {
		e.logger().Warn("redirect open failed", zap.String("target", name), zap.Bool("strict", e.Strict), zap.Error(err))
		return nil, err
	}
	return f, nil
}

func (e *Engine) release(f *os.File) {
	if err := closeFile(f); err != nil {
		e.logger().Debug("close replaced redirect", zap.Error(err))
	}
}

func (e *Engine) resolver() word.Resolver {
	if e.Resolver == nil {
		return word.Expander{}
	}
	return e.Resolver
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func closeFile(f *os.File) error {
	if f == nil {
		return nil
	}
	return f.Close()
}

// canonical resolves symlinks in path; "" if the path cannot be resolved.
func canonical(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return ""
	}
	return abs
}
