package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/marcelocantos/minish/internal/audit"
)

func (a *App) auditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check the hash chain of the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if err := audit.Verify(a.Fs, a.cfg.Audit.Path); err != nil {
				color.New(color.FgRed, color.Bold).Fprint(w, "FAILED")
				fmt.Fprintf(w, " audit verification: %v\n", err)
				a.exitCode = 1
				return nil
			}
			color.New(color.FgGreen, color.Bold).Fprint(w, "OK")
			fmt.Fprintln(w, " audit log integrity verified")
			return nil
		},
	}

	var n int
	show := &cobra.Command{
		Use:     "show",
		Aliases: []string{"tail"},
		Short:   "Print the most recent audit entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < 1 {
				return errors.New("audit show: -n must be positive")
			}
			w := cmd.OutOrStdout()
			entries, err := audit.Tail(a.Fs, a.cfg.Audit.Path, n)
			if err != nil {
				return fmt.Errorf("audit: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(w, "no audit entries")
				return nil
			}
			for _, e := range entries {
				data, _ := json.MarshalIndent(e, "", "  ")
				fmt.Fprintf(w, "%s\n", data)
			}
			return nil
		},
	}
	show.Flags().IntVarP(&n, "lines", "n", 20, "number of entries")

	cmd.AddCommand(verify, show)
	return cmd
}
