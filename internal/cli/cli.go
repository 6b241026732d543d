// Package cli implements the minish command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcelocantos/minish/internal/audit"
	"github.com/marcelocantos/minish/internal/config"
	"github.com/marcelocantos/minish/internal/logging"
	"github.com/marcelocantos/minish/internal/pipeline"
	"github.com/marcelocantos/minish/internal/session"
)

// App holds the state shared by all commands.
type App struct {
	Version string
	Stdin   *os.File
	Stdout  *os.File
	Stderr  *os.File
	Fs      afero.Fs
	// Environ is the environment trees start from.
	Environ []string

	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	audit  *audit.Logger

	// exitCode is set by commands that finish without an error but must
	// not exit 0.
	exitCode int
}

// NewApp returns an App bound to the process's streams and environment.
func NewApp(version string) *App {
	return &App{
		Version: version,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Fs:      afero.NewOsFs(),
		Environ: os.Environ(),
	}
}

// Execute runs the command line and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	a.exitCode = 0
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(a.Stderr, "minish: %v\n", err)
		return 1
	}
	return a.exitCode
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "minish",
		Short: "Evaluate shell command trees",
		Long: `minish evaluates command trees: simple commands joined by sequence,
parallel, and, or and pipe operators, with redirections, variable
assignment and the builtins cd, pwd, exit and quit.

Trees are YAML documents or Starlark scripts.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup() },
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log evaluation at debug level")

	root.AddCommand(
		a.runCommand(),
		a.builtinsCommand(),
		a.auditCommand(),
		a.mcpCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads the configuration and builds the loggers.
func (a *App) setup() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.Fs, a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if a.logger, err = logging.New(a.cfg.Log, a.verbose); err != nil {
		return err
	}

	if a.cfg.Audit.Enabled {
		a.audit, err = audit.NewLogger(a.Fs, a.cfg.Audit.Path)
		if err != nil {
			// Continue without audit logging.
			a.logger.Warn("audit disabled", zap.Error(err))
			a.audit = nil
		}
	}
	return nil
}

func (a *App) session() *session.Session {
	return &session.Session{
		Logger:  a.logger,
		Audit:   a.audit,
		Options: []pipeline.Option{pipeline.WithStrictRedirects(a.cfg.Redirect.Strict)},
	}
}

// environ is the starting environment: the process's, then the configured
// variables.
func (a *App) environ() []string {
	return append(append([]string(nil), a.Environ...), a.cfg.Environ()...)
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "minish %s\n", a.Version)
		},
	}
}
