package reconciler

import (
	"fmt"
	"time"

	"github.com/ugoscholars/scholardb/pkg/differ"
	"github.com/ugoscholars/scholardb/pkg/merge"
	"github.com/ugoscholars/scholardb/pkg/provenance"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Skip reasons, also used as metric labels.
const (
	ReasonMissing      = "missing"
	ReasonNoNameColumn = "no_name_column"
	ReasonUnreadable   = "unreadable"
)

// Result represents the outcome of a consolidation run.
type Result struct {
	// RunID identifies the run in logs and provenance.
	RunID string

	// Master is the consolidated table in canonical column order.
	Master *records.Table

	// Changeset compares the master before and after the run, ignoring Last_Updated.
	Changeset *differ.Changeset

	Stats    Stats
	Sheets   []SheetStats
	Skipped  []Skipped
	Metadata ResultMetadata

	Provenance provenance.Map

	Errors   []error
	Warnings []string
}

// Stats are the run totals reported to the operator.
type Stats struct {
	Updated int `json:"updated" yaml:"updated"`
	Added   int `json:"added" yaml:"added"`
	Total   int `json:"total" yaml:"total"`
	MinID   int `json:"min_id" yaml:"min_id"`
	MaxID   int `json:"max_id" yaml:"max_id"`
}

// SheetStats describes how one source sheet was consolidated.
type SheetStats struct {
	Sheet     string `json:"sheet" yaml:"sheet"`
	Shape     string `json:"shape" yaml:"shape"`
	Rows      int    `json:"rows" yaml:"rows"`
	Updated   int    `json:"updated" yaml:"updated"`
	Added     int    `json:"added" yaml:"added"`
	BlankName int    `json:"blank_name" yaml:"blank_name"`
}

// Skipped records a source sheet that contributed nothing.
type Skipped struct {
	Sheet  string `json:"sheet" yaml:"sheet"`
	Reason string `json:"reason" yaml:"reason"`
	Err    error  `json:"-" yaml:"-"`
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	RunAt      time.Time // timestamp written to Last_Updated
	Sources    []string
	Policy     merge.PolicyType
	DryRun     bool
	Backfilled bool // master had no id column
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Provenance: make(provenance.Map),
		Errors:     []error{},
		Warnings:   []string{},
		Metadata: ResultMetadata{
			StartTime: time.Now(),
			Sources:   []string{},
		},
	}
}

// IsSuccess returns true if the run finished without errors.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0
}

// HasChanges returns true if any master row changed beyond its timestamp.
func (r *Result) HasChanges() bool {
	return r.Changeset != nil && r.Changeset.HasChanges()
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if !r.IsSuccess() {
		return fmt.Sprintf("Consolidation failed with %d errors", len(r.Errors))
	}

	prefix := "Consolidation complete."
	if r.Metadata.DryRun {
		prefix = "Dry run complete."
	}

	s := fmt.Sprintf("%s Updated %d, added %d, total %d", prefix, r.Stats.Updated, r.Stats.Added, r.Stats.Total)
	if r.Stats.Total > 0 {
		s += fmt.Sprintf(" (ids %d-%d)", r.Stats.MinID, r.Stats.MaxID)
	}
	if len(r.Skipped) > 0 {
		s += fmt.Sprintf(", %d sheets skipped", len(r.Skipped))
	}
	return s
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
