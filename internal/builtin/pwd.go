package builtin

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pborman/getopt/v2"

	"github.com/marcelocantos/minish/internal/proc"
)

// Pwd prints the working directory of the process context. With -P the
// printed path has symlinks resolved.
type Pwd struct{}

var _ Builtin = (*Pwd)(nil)

func (*Pwd) Name() string { return "pwd" }

func (*Pwd) Run(_ context.Context, pc proc.Context, args []string, stdio proc.Stdio) (int, error) {
	opts := getopt.New()
	opts.SetProgram("pwd")
	opts.SetParameters("")
	opts.Bool('L', "print the logical working directory (default)")
	physical := opts.Bool('P', "print the working directory with symlinks resolved")

	if err := opts.Getopt(args, nil); err != nil {
		w := stderr(stdio)
		fmt.Fprintf(w, "pwd: %v\n", err)
		opts.PrintUsage(w)
		return 2, nil
	}

	wd, err := pc.Getwd()
	if err == nil && *physical {
		wd, err = filepath.EvalSymlinks(wd)
	}
	if err != nil {
		fmt.Fprintf(stderr(stdio), "pwd: %v\n", err)
		return 1, nil
	}

	if _, err := fmt.Fprintln(stdout(stdio), wd); err != nil {
		return 1, nil
	}
	return 0, nil
}
