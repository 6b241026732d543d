package builtin

import (
	"context"
	"fmt"
	"os"

	"github.com/marcelocantos/minish/internal/proc"
)

const (
	EnvHome   = "HOME"
	EnvPWD    = "PWD"
	EnvOldPWD = "OLDPWD"
)

// Cd changes the working directory of the process context.
//
//	cd       change to $HOME
//	cd -     change to $OLDPWD
//	cd DIR   change to DIR
//
// Arguments after DIR are ignored.
type Cd struct{}

var _ Builtin = (*Cd)(nil)

func (*Cd) Name() string { return "cd" }

func (*Cd) Run(_ context.Context, pc proc.Context, args []string, stdio proc.Stdio) (int, error) {
	var dir string
	switch {
	case len(args) < 2:
		dir = pc.Getenv(EnvHome)
		if dir == "" {
			fmt.Fprintln(stderr(stdio), "cd: HOME not set")
			return 1, nil
		}
	case args[1] == "-":
		dir = pc.Getenv(EnvOldPWD)
		if dir == "" {
			fmt.Fprintln(stderr(stdio), "cd: OLDPWD not set")
			return 1, nil
		}
	default:
		dir = args[1]
	}

	prev, _ := pc.Getwd()
	if err := pc.Chdir(dir); err != nil {
		fmt.Fprintf(stderr(stdio), "cd: %v\n", err)
		return 1, nil
	}
	wd, _ := pc.Getwd()
	// Setenv only fails for invalid names.
	_ = pc.Setenv(EnvOldPWD, prev)
	_ = pc.Setenv(EnvPWD, wd)
	return 0, nil
}

func stderr(stdio proc.Stdio) *os.File {
	if stdio.Err == nil {
		return os.Stderr
	}
	return stdio.Err
}

func stdout(stdio proc.Stdio) *os.File {
	if stdio.Out == nil {
		return os.Stdout
	}
	return stdio.Out
}
