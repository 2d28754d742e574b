package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ugoscholars/scholardb/cmd/scholardb/cmd/backfill"
	"github.com/ugoscholars/scholardb/cmd/scholardb/cmd/consolidate"
	"github.com/ugoscholars/scholardb/cmd/scholardb/cmd/studentids"
	"github.com/ugoscholars/scholardb/cmd/scholardb/cmd/version"
	"github.com/ugoscholars/scholardb/internal/cmd/output"
	"github.com/ugoscholars/scholardb/pkg/logging"
)

// Execute runs the scholardb CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "scholardb",
		Short:   "Scholarship student records consolidation",
		Version: a.version,
		Long: `scholardb maintains the Master_Database table of the UGO scholarship
workbook. It merges the cohort sheets (ACC C1, ACC C2, C1, C2, C3, Database)
into the master table, filling blank fields and appending new students,
and assigns Student_IDs and numeric ids.

Every write is preceded by a full backup of the store.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "maintenance",
		Title: "Maintenance Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.scholardb.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("store", "", "workbook path, CSV directory, SQLite file or postgres:// DSN")
	flags.String("driver", "", "store driver: xlsx, csv, sqlite, postgres, memory (default inferred)")

	rootCmd.SetVersionTemplate("scholardb {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")
	store := mustGetString(cmd, "store")
	driver := mustGetString(cmd, "driver")

	if cmd.Flags().Changed("config") {
		if err := a.config.UseConfigFile(a.config.ConfigFile); err != nil {
			return err
		}
	}

	if _, err := output.ParseFormat(format); err != nil {
		return err
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel, store, driver)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(consolidate.NewCommand(a))
	rootCmd.AddCommand(studentids.NewCommand(a))
	rootCmd.AddCommand(backfill.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
