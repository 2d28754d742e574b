// Package studentid assigns human-facing Student_IDs of the form
// UGO_<cohort>_<seq>, where seq is one global sequence shared by all cohorts.
package studentid

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Cohorts recognized in a Source_Sheet value, in match order.
var Cohorts = []string{"C1", "C2", "C3", "C4", "C5"}

// Options controls an assignment pass.
type Options struct {
	// Reset regenerates every Student_ID from 1. Otherwise rows that already
	// carry a UGO_ id keep it and numbering continues after the highest one.
	Reset bool

	// Strict rejects rows whose cohort cannot be determined instead of
	// defaulting them.
	Strict bool
}

// CohortStats summarizes the ids held by one cohort.
type CohortStats struct {
	Count int `json:"count" yaml:"count"`
	Min   int `json:"min" yaml:"min"`
	Max   int `json:"max" yaml:"max"`
}

// Defaulted is a row whose cohort fell back to the default.
type Defaulted struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	SourceSheet string `json:"source_sheet" yaml:"source_sheet"`
	StudentID   string `json:"student_id" yaml:"student_id"`
}

// Report describes the outcome of Assign.
type Report struct {
	Updated   int                     `json:"updated" yaml:"updated"`
	Total     int                     `json:"total" yaml:"total"`
	Sequence  int                     `json:"sequence" yaml:"sequence"` // highest sequence in use
	Cohorts   map[string]*CohortStats `json:"cohorts" yaml:"cohorts"`
	Defaulted []Defaulted             `json:"defaulted,omitempty" yaml:"defaulted,omitempty"`
}

// CohortNames returns the cohorts in the report, sorted.
func (r *Report) CohortNames() []string {
	names := make([]string, 0, len(r.Cohorts))
	for c := range r.Cohorts {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

func (r *Report) track(cohort string, seq int, known bool) {
	s, ok := r.Cohorts[cohort]
	if !ok {
		s = &CohortStats{}
		r.Cohorts[cohort] = s
	}
	s.Count++
	if !known {
		return
	}
	if s.Min == 0 || seq < s.Min {
		s.Min = seq
	}
	if seq > s.Max {
		s.Max = seq
	}
}

// NormalizeCohort maps a Source_Sheet value to a cohort. The second result
// is true when nothing matched and the default cohort was used.
func NormalizeCohort(sourceSheet string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(sourceSheet))
	for _, c := range Cohorts {
		if strings.Contains(s, c) {
			return c, false
		}
	}
	return constants.DefaultCohort, true
}

// Format renders a Student_ID.
func Format(seq int, cohort string) string {
	return fmt.Sprintf("%s_%s_%03d", constants.StudentIDPrefix, cohort, seq)
}

// Sequence extracts the sequence number of a UGO_<cohort>_<n> id.
func Sequence(studentID string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(studentID), "_")
	if len(parts) < 3 || parts[0] != constants.StudentIDPrefix {
		return 0, false
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MaxSequence returns the highest sequence among ids, or 0.
func MaxSequence(ids []string) int {
	highest := 0
	for _, id := range ids {
		if n, ok := Sequence(id); ok && n > highest {
			highest = n
		}
	}
	return highest
}

func hasStudentID(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), constants.StudentIDPrefix+"_")
}

// Assign generates Student_IDs for the master table in place. Generated rows
// also get their Cohort set. With Strict set, a row that would be defaulted
// fails the whole pass with a ValidationError and t is left unchanged.
func Assign(ctx context.Context, t *records.Table, opts Options) (*Report, error) {
	logger := logging.FromContext(ctx)
	report := &Report{Total: len(t.Rows), Cohorts: make(map[string]*CohortStats)}

	seq := 0
	if !opts.Reset {
		ids := make([]string, 0, len(t.Rows))
		for _, row := range t.Rows {
			ids = append(ids, row[records.StudentID])
		}
		seq = MaxSequence(ids)
	}

	type pending struct {
		row    records.Row
		id     string
		cohort string
	}
	var plan []pending

	for _, row := range t.Rows {
		source := row[records.SourceSheet]
		cohort, defaulted := NormalizeCohort(source)

		if !opts.Reset && hasStudentID(row[records.StudentID]) {
			n, ok := Sequence(row[records.StudentID])
			report.track(cohort, n, ok)
			continue
		}

		seq++
		id := Format(seq, cohort)
		if defaulted {
			d := Defaulted{
				ID:          row[records.IDField],
				Name:        row[records.FullName],
				SourceSheet: source,
				StudentID:   id,
			}
			if opts.Strict {
				return nil, &errors.ValidationError{
					Field:   records.SourceSheet,
					Value:   source,
					Message: fmt.Sprintf("no cohort in source sheet for student %s (%s)", d.ID, d.Name),
				}
			}
			logger.Warn().
				Str("id", d.ID).
				Str("name", d.Name).
				Str("source_sheet", source).
				Str("cohort", cohort).
				Msg("Cohort not recognized, using default")
			report.Defaulted = append(report.Defaulted, d)
		}

		plan = append(plan, pending{row: row, id: id, cohort: cohort})
		report.track(cohort, seq, true)
	}

	if len(plan) > 0 {
		t.AddColumn(records.StudentID)
		t.AddColumn(records.Cohort)
	}
	for _, p := range plan {
		p.row[records.StudentID] = p.id
		p.row[records.Cohort] = p.cohort
	}

	report.Updated = len(plan)
	report.Sequence = seq
	return report, nil
}
