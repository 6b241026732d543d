// Package proc models the process-wide state a shell mutates: environment
// variables, the working directory and the three standard streams.
//
// The evaluator never touches the real process state directly. It receives a
// Context and clones it for every concurrent branch, which gives each branch
// the isolation a forked child would have.
package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
)

// Stdio holds the standard streams of a command. Files are used rather than
// io.Reader/io.Writer so spawned programs inherit the descriptors directly.
type Stdio struct {
	In  *os.File
	Out *os.File
	Err *os.File
}

// Context is the process state visible to a command.
type Context interface {
	// Getenv returns the value of key, or "" when unset.
	Getenv(key string) string

	// LookupEnv returns the value of key and whether it is set.
	LookupEnv(key string) (string, bool)

	// Setenv binds key to value.
	Setenv(key, value string) error

	// Environ returns a copy of the environment as key=value strings.
	Environ() []string

	// Getwd returns the working directory.
	Getwd() (string, error)

	// Chdir changes the working directory. Relative paths resolve against
	// the current one.
	Chdir(dir string) error

	// Stdio returns the standard streams.
	Stdio() Stdio

	// Clone returns an independent copy of the context using the given
	// streams. Changes to either copy are invisible to the other.
	Clone(stdio Stdio) Context
}

// Env is the default in-memory Context.
type Env struct {
	mu    sync.RWMutex
	vars  map[string]string
	dir   string
	stdio Stdio
}

var _ Context = (*Env)(nil)

// New creates a context rooted at dir with the given key=value environment.
func New(dir string, environ []string, stdio Stdio) *Env {
	e := &Env{
		vars:  make(map[string]string, len(environ)),
		dir:   filepath.Clean(dir),
		stdio: stdio,
	}
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		if k != "" {
			e.vars[k] = v
		}
	}
	return e
}

// FromOS snapshots the calling process: its environment, working directory
// and standard streams.
func FromOS() (*Env, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}
	return New(wd, os.Environ(), Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}), nil
}

// Getenv implements Context.
func (e *Env) Getenv(key string) string {
	v, _ := e.LookupEnv(key)
	return v
}

// LookupEnv implements Context.
func (e *Env) LookupEnv(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[key]
	return v, ok
}

// Setenv implements Context.
func (e *Env) Setenv(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\x00") {
		return fmt.Errorf("setenv: invalid name %q", key)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[key] = value
	return nil
}

// Environ implements Context. The result is sorted by key.
func (e *Env) Environ() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	env := make([]string, 0, len(e.vars))
	for k, v := range e.vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// Getwd implements Context.
func (e *Env) Getwd() (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dir, nil
}

// Chdir implements Context.
func (e *Env) Chdir(dir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	target := dir
	if !filepath.IsAbs(target) {
		target = filepath.Join(e.dir, target)
	}
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: dir, Err: syscall.ENOTDIR}
	}
	e.dir = filepath.Clean(target)
	return nil
}

// Stdio implements Context.
func (e *Env) Stdio() Stdio {
	return e.stdio
}

// Clone implements Context.
func (e *Env) Clone(stdio Stdio) Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	vars := make(map[string]string, len(e.vars))
	for k, v := range e.vars {
		vars[k] = v
	}
	return &Env{vars: vars, dir: e.dir, stdio: stdio}
}

// Abs resolves path against the working directory of pc.
func Abs(pc Context, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	wd, err := pc.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(wd, path)
}
