package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/minish/internal/builtin"
)

func (a *App) builtinsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "builtins",
		Short: "List builtin commands",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			for _, b := range builtin.Default().All() {
				kind := "in-process"
				if _, ok := b.(builtin.Terminal); ok {
					kind = "terminal"
				}
				fmt.Fprintf(w, "%-6s %s\n", b.Name(), kind)
			}
		},
	}
}
