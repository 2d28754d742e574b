package table

import (
	"strconv"
	"strings"

	"github.com/ugoscholars/scholardb/pkg/differ"
	"github.com/ugoscholars/scholardb/pkg/reconciler"
	"github.com/ugoscholars/scholardb/pkg/records"
	"github.com/ugoscholars/scholardb/pkg/studentid"
)

// SheetsToTableData lists every source sheet of a run, consolidated or skipped,
// in processing order.
func SheetsToTableData(result *reconciler.Result) Data {
	rows := make([][]string, 0, len(result.Sheets)+len(result.Skipped))
	for _, s := range result.Sheets {
		rows = append(rows, []string{
			s.Sheet,
			s.Shape,
			strconv.Itoa(s.Rows),
			strconv.Itoa(s.Updated),
			strconv.Itoa(s.Added),
			"",
		})
	}
	for _, s := range result.Skipped {
		rows = append(rows, []string{s.Sheet, "-", "-", "-", "-", s.Reason})
	}

	return Data{
		Headers:         []string{"Sheet", "Shape", "Rows", "Updated", "Added", "Skipped"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignLeft},
	}
}

// ChangesToTableData flattens a changeset to one row per changed field.
// Added students get a single row.
func ChangesToTableData(cs *differ.Changeset) Data {
	var rows [][]string
	if cs == nil {
		return Data{Headers: changeHeaders}
	}
	for _, row := range cs.Added {
		rows = append(rows, []string{
			"+",
			row[records.IDField],
			row[records.FullName],
			records.SourceSheet,
			"",
			orDash(row[records.SourceSheet]),
		})
	}
	for _, u := range cs.Updated {
		for i, ch := range u.Changes {
			id, name := "", ""
			if i == 0 {
				id, name = strconv.Itoa(u.ID), u.Name
			}
			rows = append(rows, []string{"~", id, name, ch.Field, orDash(ch.OldValue), orDash(ch.NewValue)})
		}
	}
	return Data{
		Headers:         changeHeaders,
		Rows:            rows,
		ColumnAlignment: []Align{AlignCenter, AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
}

var changeHeaders = []string{"", "ID", "Name", "Field", "Before", "After"}

// CohortsToTableData summarizes Student_ID ranges per cohort.
func CohortsToTableData(report *studentid.Report) Data {
	rows := make([][]string, 0, len(report.Cohorts))
	for _, name := range report.CohortNames() {
		c := report.Cohorts[name]
		rows = append(rows, []string{
			name,
			strconv.Itoa(c.Count),
			studentid.Format(c.Min, name),
			studentid.Format(c.Max, name),
		})
	}
	return Data{
		Headers:         []string{"Cohort", "Students", "First", "Last"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft},
	}
}

// DefaultedToTableData lists rows whose cohort fell back to the default.
func DefaultedToTableData(report *studentid.Report) Data {
	rows := make([][]string, 0, len(report.Defaulted))
	for _, d := range report.Defaulted {
		rows = append(rows, []string{d.ID, d.Name, orDash(strings.TrimSpace(d.SourceSheet)), d.StudentID})
	}
	return Data{
		Headers: []string{"ID", "Name", "Source Sheet", "Student ID"},
		Rows:    rows,
	}
}
