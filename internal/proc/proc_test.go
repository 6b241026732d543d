package proc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesEnviron(t *testing.T) {
	e := New("/", []string{"A=1", "B=x=y", "C", "=bad"}, Stdio{})

	v, ok := e.LookupEnv("A")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, "x=y", e.Getenv("B"))

	v, ok = e.LookupEnv("C")
	assert.True(t, ok)
	assert.Empty(t, v)

	assert.Equal(t, []string{"A=1", "B=x=y", "C="}, e.Environ())
}

func TestSetenvRejectsInvalidNames(t *testing.T) {
	e := New("/", nil, Stdio{})
	assert.Error(t, e.Setenv("", "x"))
	assert.Error(t, e.Setenv("A=B", "x"))
	require.NoError(t, e.Setenv("A", "x"))
	assert.Equal(t, "x", e.Getenv("A"))
}

func TestChdir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), nil, 0644))

	e := New(dir, nil, Stdio{})

	require.NoError(t, e.Chdir("sub"))
	wd, _ := e.Getwd()
	assert.Equal(t, filepath.Join(dir, "sub"), wd)

	require.NoError(t, e.Chdir(".."))
	wd, _ = e.Getwd()
	assert.Equal(t, dir, wd)

	assert.Error(t, e.Chdir("missing"))
	assert.Error(t, e.Chdir("file"))
	wd, _ = e.Getwd()
	assert.Equal(t, dir, wd, "failed chdir must not move")
}

func TestCloneIsIndependent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	parent := New(dir, []string{"A=1"}, Stdio{Out: os.Stdout})
	child := parent.Clone(Stdio{Out: os.Stderr})

	require.NoError(t, child.Setenv("A", "2"))
	require.NoError(t, child.Chdir("sub"))

	assert.Equal(t, "1", parent.Getenv("A"))
	wd, _ := parent.Getwd()
	assert.Equal(t, dir, wd)
	assert.Equal(t, os.Stdout, parent.Stdio().Out)
	assert.Equal(t, os.Stderr, child.Stdio().Out)
}

func TestAbs(t *testing.T) {
	e := New("/work", nil, Stdio{})
	assert.Equal(t, "/work/a.txt", Abs(e, "a.txt"))
	assert.Equal(t, "/etc/hosts", Abs(e, "/etc/hosts"))
}
