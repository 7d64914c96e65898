package app

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harborwatch/ballast/cmd/ballast/cmd"
	"github.com/harborwatch/ballast/pkg/errors"
)

// Exit codes. Deployment scripts branch on these: a partial run means
// the table was updated but at least one source was left out, which
// usually warrants a retry once the source is fixed.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitPartial = 3
)

// Execute runs the ballast CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ballast",
		Short:   "Ship emission registry ingestion",
		Version: a.version,
		Long: `Ballast ingests the yearly ship emission registry workbooks into a
relational table. Sources are declared in a manifest together with their
format and precedence; each run streams the workbooks, reconciles
overlapping records, and applies the difference to the table in a single
transaction.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.config.Manifest, "manifest", "m", a.config.Manifest, "run manifest file")
	rootCmd.PersistentFlags().StringVar(&a.config.DatabaseURL, "database-url", a.config.DatabaseURL, "database URL (overrides manifest and BALLAST_DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&a.config.Table, "table", a.config.Table, "destination table (overrides manifest)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", "", "output format: table, json")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("ballast {{.Version}}\n")

	// Flag parse failures must exit with the usage code, not the
	// general failure code.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand runs before any command: it folds parsed flag values back
// into the config and reinitializes the logger accordingly.
func (a *App) setupCommand(c *cobra.Command, _ []string) error {
	verbose := mustGetBool(c, "verbose")
	quiet := mustGetBool(c, "quiet")
	noColor := mustGetBool(c, "no-color")
	format := mustGetString(c, "format")
	logLevel := mustGetString(c, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(cmd.NewRunCommand(a))
	rootCmd.AddCommand(cmd.NewCheckCommand(a))
	rootCmd.AddCommand(cmd.NewExportCommand(a))
	rootCmd.AddCommand(cmd.NewVersionCommand(a))
}

// usageError marks errors that should exit with ExitUsage.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, cmd.ErrPartialRun):
		return ExitPartial
	case errors.As(err, &usage):
		return ExitUsage
	case strings.HasPrefix(err.Error(), "unknown command"):
		// Cobra reports unresolved subcommands with a plain error.
		return ExitUsage
	default:
		return ExitFailure
	}
}

// ExitOnError prints the error and exits with its mapped code.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	_, _ = os.Stderr.WriteString("ballast: " + err.Error() + "\n")
	os.Exit(ExitCode(err))
}

// mustGetBool retrieves a boolean flag value or panics if the flag does
// not exist. Only for flags defined in this package.
func mustGetBool(c *cobra.Command, name string) bool {
	val, err := c.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag does
// not exist. Only for flags defined in this package.
func mustGetString(c *cobra.Command, name string) string {
	val, err := c.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
