// Package consolidate provides the consolidate command.
package consolidate

import (
	"github.com/spf13/cobra"

	"github.com/ugoscholars/scholardb"
	"github.com/ugoscholars/scholardb/internal/cmd/application"
	"github.com/ugoscholars/scholardb/internal/cmd/cmdutil"
	"github.com/ugoscholars/scholardb/internal/cmd/emoji"
	"github.com/ugoscholars/scholardb/internal/cmd/output"
	"github.com/ugoscholars/scholardb/pkg/reconciler"
)

// Flags holds the consolidate command flags.
type Flags struct {
	*cmdutil.WriteFlags
	Sheets         []string
	Shapes         string
	ProvenanceFile string
	MetricsFile    string
	Changes        bool
}

// NewCommand creates the consolidate command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "consolidate",
		GroupID: "core",
		Short:   "Merge the cohort sheets into Master_Database",
		Long: `Consolidate reads every configured source sheet and merges it into the
master table:

• Students are matched by trimmed, case-insensitive full name
• Blank master fields are filled, earlier sheets win, populated fields are never overwritten
• Source_Sheet collects every sheet a student appeared in
• Unmatched students are appended with the next free id

The whole store is backed up before the master table is rewritten.`,
		Example: `  scholardb consolidate --store "UGO Scholars.xlsx"
  scholardb consolidate --dry-run                   # preview changes
  scholardb consolidate --sheets C1,C2              # only these sheets, in this order
  scholardb consolidate -o json --metrics-file /var/lib/node_exporter/scholardb.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	flags.WriteFlags = cmdutil.AddWriteFlags(cmd)
	cmd.Flags().StringSliceVar(&flags.Sheets, "sheets", nil, "source sheets to consolidate, in order (default ACC C1,ACC C2,C1,C2,C3,Database)")
	cmd.Flags().StringVar(&flags.Shapes, "shapes", "", "YAML file overriding the built-in sheet shapes")
	cmd.Flags().StringVar(&flags.ProvenanceFile, "provenance-file", "", "write field provenance to this YAML file")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&flags.Changes, "changes", false, "list changed fields (always on with --dry-run)")

	return cmd
}

// clientOptions converts the flags to client options.
func (f *Flags) clientOptions() []scholardb.Option {
	var opts []scholardb.Option
	if len(f.Sheets) > 0 {
		opts = append(opts, scholardb.WithSheetOrder(f.Sheets...))
	}
	if f.Shapes != "" {
		opts = append(opts, scholardb.WithShapesFile(f.Shapes))
	}
	if f.ProvenanceFile != "" {
		opts = append(opts, scholardb.WithProvenanceFile(f.ProvenanceFile))
	}
	if f.MetricsFile != "" {
		opts = append(opts, scholardb.WithMetricsFile(f.MetricsFile))
	}
	return opts
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	client, err := app.Client(ctx, flags.clientOptions()...)
	if err != nil {
		return err
	}

	result, err := client.Consolidate(ctx, flags.RunOptions()...)
	if err != nil {
		cmdutil.Notef(stderr, false, emoji.Error, "Consolidation failed")
		return err
	}

	printSummary(cmd, app, result)

	format := output.Format(app.OutputFormat())
	return output.WriteResult(cmd.OutOrStdout(), format, result, flags.DryRun || flags.Changes)
}

func printSummary(cmd *cobra.Command, app application.Application, result *reconciler.Result) {
	stderr, quiet := cmd.ErrOrStderr(), app.Quiet()

	for _, s := range result.Skipped {
		cmdutil.Notef(stderr, quiet, emoji.Skipped, "Skipped %s (%s)", s.Sheet, s.Reason)
	}
	if result.Metadata.Backfilled {
		cmdutil.Notef(stderr, quiet, emoji.Warning, "Master table had no id column, ids were assigned by row order")
	}

	symbol := emoji.Success
	if result.Metadata.DryRun {
		symbol = emoji.Preview
	}
	cmdutil.Notef(stderr, quiet, symbol, "%s", result.Summary())
	if result.Changeset != nil {
		cmdutil.Notef(stderr, quiet, emoji.Info, "%s", result.Changeset.String())
	}
}
