package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/minish/internal/mcpserver"
	"github.com/marcelocantos/minish/internal/tree"
)

func (a *App) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve tree evaluation over MCP on standard input and output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			s := mcpserver.New(mcpserver.Config{
				Version: a.Version,
				Session: a.session(),
				Loader:  &tree.Loader{Fs: a.Fs, Logger: a.logger},
				Dir:     dir,
				Environ: a.environ(),
				Logger:  a.logger,
			})
			return mcpserver.Serve(cmd.Context(), s, a.Stdin, a.Stdout)
		},
	}
}
