// Package backfill provides the backfill-ids command.
package backfill

import (
	"github.com/spf13/cobra"

	"github.com/ugoscholars/scholardb/internal/cmd/application"
	"github.com/ugoscholars/scholardb/internal/cmd/cmdutil"
	"github.com/ugoscholars/scholardb/internal/cmd/emoji"
	"github.com/ugoscholars/scholardb/internal/cmd/output"
)

// Result is the structured output of backfill-ids.
type Result struct {
	Numbered int  `json:"numbered" yaml:"numbered"`
	DryRun   bool `json:"dry_run" yaml:"dry_run"`
}

// NewCommand creates the backfill-ids command.
func NewCommand(app application.Application) *cobra.Command {
	var force bool
	var write *cmdutil.WriteFlags

	cmd := &cobra.Command{
		Use:     "backfill-ids",
		GroupID: "maintenance",
		Short:   "Number master rows 1..N in the id column",
		Long: `Backfill-ids drops fully empty master rows and numbers the rest 1..N in
row order, with id as the first column. It refuses a master table that
already has an id column unless --force is given.`,
		Example: `  scholardb backfill-ids
  scholardb backfill-ids --force --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, err := app.Client(ctx)
			if err != nil {
				return err
			}

			n, err := client.BackfillIDs(ctx, force, write.RunOptions()...)
			if err != nil {
				cmdutil.Notef(cmd.ErrOrStderr(), false, emoji.Error, "Backfill failed")
				return err
			}

			symbol := emoji.Success
			if write.DryRun {
				symbol = emoji.Preview
			}
			cmdutil.Notef(cmd.ErrOrStderr(), app.Quiet(), symbol, "Numbered %d rows", n)

			return output.NewFormatter(output.Format(app.OutputFormat())).
				Format(cmd.OutOrStdout(), Result{Numbered: n, DryRun: write.DryRun})
		},
	}

	write = cmdutil.AddWriteFlags(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "renumber even when the id column exists")

	return cmd
}
