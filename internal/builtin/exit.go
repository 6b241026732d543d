package builtin

import (
	"context"

	"github.com/marcelocantos/minish/internal/proc"
)

// Exit ends the shell with status 0. It is registered as both exit and quit.
type Exit struct {
	Verb string
}

var _ Terminal = (*Exit)(nil)

func (e *Exit) Name() string { return e.Verb }

func (e *Exit) Run(context.Context, proc.Context, []string, proc.Stdio) (int, error) {
	return 0, &ExitError{Code: 0}
}

func (*Exit) terminal() {}
