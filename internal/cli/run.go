package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/pipeline"
	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/session"
	"github.com/marcelocantos/minish/internal/tree"
)

// ExitFatal is the exit code for a run that ended in StatusFatal.
const ExitFatal = 2

type runOptions struct {
	commands []string
	format   string
}

func (a *App) runCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [-c tree]... [file|-]...",
		Short: "Evaluate command trees",
		Long: `Evaluate command trees from -c arguments, then from each file in order.
"-" or no source at all reads a tree from standard input.

All trees share one shell state: a cd or assignment in one is seen by the
next. exit or quit stops at once. The exit code is the status of the last
tree.`,
		Example: `  minish run -c 'pipe: [ls, sort -r]'
  minish run build.yaml deploy.star
  echo 'main = sh("pwd")' | minish run --format starlark`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, opts, args)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.commands, "command", "c", nil, "evaluate the given tree document")
	cmd.Flags().StringVar(&opts.format, "format", "yaml", "format of -c and standard input trees (yaml or starlark)")
	return cmd
}

// source is one tree to evaluate.
type source struct {
	name string
	load func() (ast.Node, error)
}

func (a *App) run(cmd *cobra.Command, opts runOptions, files []string) error {
	var format tree.Format
	switch opts.format {
	case "yaml":
		format = tree.FormatYAML
	case "starlark":
		format = tree.FormatStarlark
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	loader := &tree.Loader{Fs: a.Fs, Logger: a.logger}
	var sources []source
	for _, doc := range opts.commands {
		sources = append(sources, source{"-c", func() (ast.Node, error) {
			return loader.Parse("-c", format, []byte(doc))
		}})
	}
	if len(sources) == 0 && len(files) == 0 {
		files = []string{"-"}
	}
	for _, f := range files {
		if f == "-" {
			sources = append(sources, source{"<stdin>", func() (ast.Node, error) {
				data, err := io.ReadAll(a.Stdin)
				if err != nil {
					return nil, fmt.Errorf("read standard input: %w", err)
				}
				return loader.Parse("<stdin>", format, data)
			}})
			continue
		}
		sources = append(sources, source{f, func() (ast.Node, error) {
			return loader.LoadFile(f)
		}})
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	pc := proc.New(wd, a.environ(), proc.Stdio{In: a.Stdin, Out: a.Stdout, Err: a.Stderr})
	sess := a.session()

	var res session.Result
	for _, src := range sources {
		node, err := src.load()
		if err != nil {
			return err
		}
		res = sess.Run(cmd.Context(), pc, src.name, node)
		if res.Exited {
			break
		}
	}
	a.exitCode = exitCode(res.Status)
	return nil
}

// exitCode maps an evaluation status to a process exit code.
func exitCode(status int) int {
	if status == pipeline.StatusFatal || status < 0 || status > 255 {
		return ExitFatal
	}
	return status
}
