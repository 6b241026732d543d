package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/marcelocantos/minish/internal/proc"
)

// ErrExec marks failures to load a program image. A Spawner wraps it when
// the program cannot be found or executed; any other Spawn error is a
// failure to create the process.
var ErrExec = errors.New("cannot execute")

// SpawnRequest describes one program invocation.
type SpawnRequest struct {
	Argv  []string // Argv[0] is the verb as written
	Dir   string
	Env   []string
	Stdio proc.Stdio
}

// Spawner starts a program and waits for it to exit.
type Spawner interface {
	Spawn(ctx context.Context, req SpawnRequest) (int, error)
}

// ExecSpawner runs programs as child processes of the shell.
type ExecSpawner struct{}

var _ Spawner = ExecSpawner{}

// defaultPath is searched when the environment has no PATH, as execvp does.
const defaultPath = "/bin:/usr/bin"

// Spawn implements Spawner. The program is looked up in the PATH of
// req.Env, not of the calling process. A child killed by a signal reports
// 128 plus the signal number.
//
// Cancelling ctx does not reach the child: it runs until it exits on its own.
func (ExecSpawner) Spawn(_ context.Context, req SpawnRequest) (int, error) {
	if len(req.Argv) == 0 {
		return 0, fmt.Errorf("%w: empty argument vector", ErrExec)
	}
	pathList := getenv(req.Env, "PATH")
	if pathList == "" {
		pathList = defaultPath
	}
	path, err := lookPath(req.Argv[0], pathList, req.Dir)
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(path, req.Argv[1:]...)
	cmd.Args[0] = req.Argv[0]
	cmd.Dir = req.Dir
	cmd.Env = req.Env
	// A nil *os.File stored in an io.Reader is not a nil interface.
	if req.Stdio.In != nil {
		cmd.Stdin = req.Stdio.In
	}
	if req.Stdio.Out != nil {
		cmd.Stdout = req.Stdio.Out
	}
	if req.Stdio.Err != nil {
		cmd.Stderr = req.Stdio.Err
	}

	if err := cmd.Start(); err != nil {
		if isExecError(err) {
			return 0, fmt.Errorf("%w: %w", ErrExec, err)
		}
		return 0, err
	}

	err = cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil
}

func isExecError(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.ENOEXEC) ||
		errors.Is(err, syscall.EISDIR)
}

// lookPath finds name the way execvp does, using pathList instead of the
// calling process's PATH. Relative results resolve against dir.
func lookPath(name, pathList, dir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: %w", ErrExec, &exec.Error{Name: name, Err: exec.ErrNotFound})
	}
	if strings.Contains(name, "/") {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if err := executable(path); err != nil {
			return "", fmt.Errorf("%w: %w", ErrExec, &exec.Error{Name: name, Err: err})
		}
		return path, nil
	}
	for _, d := range filepath.SplitList(pathList) {
		if d == "" {
			d = "."
		}
		path := filepath.Join(d, name)
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if executable(path) == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %w", ErrExec, &exec.Error{Name: name, Err: exec.ErrNotFound})
}

func executable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return syscall.EISDIR
	}
	if info.Mode()&0111 == 0 {
		return fs.ErrPermission
	}
	return nil
}

func getenv(env []string, key string) string {
	for i := len(env) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(env[i], "="); ok && k == key {
			return v
		}
	}
	return ""
}
