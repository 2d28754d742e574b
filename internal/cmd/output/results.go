package output

import (
	"io"
	"time"

	"github.com/ugoscholars/scholardb/internal/cmd/table"
	"github.com/ugoscholars/scholardb/pkg/reconciler"
	"github.com/ugoscholars/scholardb/pkg/studentid"
)

// RunSummary is the structured form of a consolidation result.
type RunSummary struct {
	RunID      string                  `json:"run_id" yaml:"run_id"`
	DryRun     bool                    `json:"dry_run" yaml:"dry_run"`
	Backfilled bool                    `json:"backfilled_ids,omitempty" yaml:"backfilled_ids,omitempty"`
	RunAt      time.Time               `json:"run_at" yaml:"run_at"`
	Duration   string                  `json:"duration" yaml:"duration"`
	Stats      reconciler.Stats        `json:"stats" yaml:"stats"`
	Sheets     []reconciler.SheetStats `json:"sheets" yaml:"sheets"`
	Skipped    []reconciler.Skipped    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Changes    ChangeCounts            `json:"changes" yaml:"changes"`
}

// ChangeCounts counts changed students, ignoring Last_Updated.
type ChangeCounts struct {
	Added   int `json:"added" yaml:"added"`
	Updated int `json:"updated" yaml:"updated"`
}

// NewRunSummary builds a RunSummary from result.
func NewRunSummary(result *reconciler.Result) RunSummary {
	s := RunSummary{
		RunID:      result.RunID,
		DryRun:     result.Metadata.DryRun,
		Backfilled: result.Metadata.Backfilled,
		RunAt:      result.Metadata.RunAt,
		Duration:   result.Metadata.Duration.Round(time.Millisecond).String(),
		Stats:      result.Stats,
		Sheets:     result.Sheets,
		Skipped:    result.Skipped,
	}
	if result.Changeset != nil {
		s.Changes = ChangeCounts{Added: result.Changeset.Summary.Added, Updated: result.Changeset.Summary.Updated}
	}
	return s
}

// WriteResult renders a consolidation result. Tables show per-sheet counts,
// followed by field-level changes when showChanges is set.
func WriteResult(w io.Writer, format Format, result *reconciler.Result, showChanges bool) error {
	if format == FormatJSON || format == FormatYAML {
		return NewFormatter(format).Format(w, NewRunSummary(result))
	}

	f := NewFormatter(FormatTable)
	if err := f.Format(w, table.SheetsToTableData(result)); err != nil {
		return err
	}
	if showChanges && result.HasChanges() {
		return f.Format(w, table.ChangesToTableData(result.Changeset))
	}
	return nil
}

// WriteStudentIDReport renders a Student_ID assignment report.
func WriteStudentIDReport(w io.Writer, format Format, report *studentid.Report) error {
	if format == FormatJSON || format == FormatYAML {
		return NewFormatter(format).Format(w, report)
	}

	f := NewFormatter(FormatTable)
	if err := f.Format(w, table.CohortsToTableData(report)); err != nil {
		return err
	}
	if len(report.Defaulted) > 0 {
		return f.Format(w, table.DefaultedToTableData(report))
	}
	return nil
}
