package pipeline

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelocantos/minish/internal/proc"
)

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "bin")
	require.NoError(t, os.Mkdir(bin, 0o755))
	prog := filepath.Join(bin, "prog")
	require.NoError(t, os.WriteFile(prog, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "plain"), []byte("x"), 0o644))

	got, err := lookPath("prog", "/nonexistent:"+bin, dir)
	require.NoError(t, err)
	assert.Equal(t, prog, got)

	got, err = lookPath("bin/prog", "", dir)
	require.NoError(t, err)
	assert.Equal(t, prog, got)

	got, err = lookPath("prog", "bin", dir)
	require.NoError(t, err)
	assert.Equal(t, prog, got)

	for _, name := range []string{"", "plain", "missing", "bin/plain", "bin"} {
		_, err := lookPath(name, bin, dir)
		assert.ErrorIs(t, err, ErrExec, name)
	}
}

func TestLookPathNotFound(t *testing.T) {
	_, err := lookPath("prog", "", t.TempDir())
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestGetenvLastWins(t *testing.T) {
	env := []string{"PATH=/a", "HOME=/h", "PATH=/b"}
	assert.Equal(t, "/b", getenv(env, "PATH"))
	assert.Equal(t, "", getenv(env, "NOPE"))
}

func TestSpawnUsesRequestEnvAndDir(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	out, err := os.Create(filepath.Join(dir, "out"))
	require.NoError(t, err)
	defer out.Close()

	status, err := ExecSpawner{}.Spawn(context.Background(), SpawnRequest{
		Argv:  []string{"sh", "-c", `printf '%s %s' "$FOO" "$(pwd)"`},
		Dir:   dir,
		Env:   []string{"PATH=" + os.Getenv("PATH"), "FOO=bar"},
		Stdio: proc.Stdio{Out: out},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, status)

	data, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Equal(t, "bar "+dir, string(data))
}

func TestSpawnEmptyArgv(t *testing.T) {
	_, err := ExecSpawner{}.Spawn(context.Background(), SpawnRequest{})
	assert.True(t, errors.Is(err, ErrExec))
}

func TestSpawnWithoutPathUsesDefaultDirs(t *testing.T) {
	dir := t.TempDir()
	for name, env := range map[string][]string{
		"unset": {"HOME=" + dir},
		"empty": {"PATH=", "HOME=" + dir},
	} {
		t.Run(name, func(t *testing.T) {
			status, err := ExecSpawner{}.Spawn(context.Background(), SpawnRequest{
				Argv: []string{"true"},
				Dir:  dir,
				Env:  env,
			})
			require.NoError(t, err)
			assert.Equal(t, 0, status)
		})
	}
}
