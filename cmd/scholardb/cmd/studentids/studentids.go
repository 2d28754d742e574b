// Package studentids provides the student-ids command.
package studentids

import (
	"github.com/spf13/cobra"

	"github.com/ugoscholars/scholardb/internal/cmd/application"
	"github.com/ugoscholars/scholardb/internal/cmd/cmdutil"
	"github.com/ugoscholars/scholardb/internal/cmd/emoji"
	"github.com/ugoscholars/scholardb/internal/cmd/output"
	"github.com/ugoscholars/scholardb/pkg/studentid"
)

// NewCommand creates the student-ids command.
func NewCommand(app application.Application) *cobra.Command {
	var opts studentid.Options
	var write *cmdutil.WriteFlags

	cmd := &cobra.Command{
		Use:     "student-ids",
		GroupID: "maintenance",
		Short:   "Assign UGO_<cohort>_<seq> Student_IDs",
		Long: `Student-ids gives every master row without a UGO_ Student_ID a new one.
The sequence is global across cohorts and continues after the highest
existing id. The cohort is the first of C1..C5 found in Source_Sheet; rows
without one default to C1 and are listed in the report.

With --reset every Student_ID is regenerated from 1.
With --strict a row without a recognizable cohort aborts the command.`,
		Example: `  scholardb student-ids
  scholardb student-ids --dry-run
  scholardb student-ids --reset --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			stderr, quiet := cmd.ErrOrStderr(), app.Quiet()

			client, err := app.Client(ctx)
			if err != nil {
				return err
			}

			report, err := client.AssignStudentIDs(ctx, opts, write.RunOptions()...)
			if err != nil {
				cmdutil.Notef(stderr, false, emoji.Error, "Student_ID assignment failed")
				return err
			}

			for _, d := range report.Defaulted {
				cmdutil.Notef(stderr, quiet, emoji.Warning, "%s (id %s) has no cohort in %q, assigned %s", d.Name, d.ID, d.SourceSheet, d.StudentID)
			}
			symbol := emoji.Success
			if write.DryRun {
				symbol = emoji.Preview
			}
			cmdutil.Notef(stderr, quiet, symbol, "Assigned %d of %d Student_IDs, sequence at %d", report.Updated, report.Total, report.Sequence)

			return output.WriteStudentIDReport(cmd.OutOrStdout(), output.Format(app.OutputFormat()), report)
		},
	}

	write = cmdutil.AddWriteFlags(cmd)
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "regenerate every Student_ID from 1")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail instead of defaulting unrecognized cohorts to C1")

	return cmd
}
