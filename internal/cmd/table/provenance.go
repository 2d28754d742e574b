package table

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/provenance"
)

// ProvenanceToTableData converts a run's provenance to one row per written
// field, grouped by student id and then field.
func ProvenanceToTableData(m provenance.Map) Data {
	report := provenance.GenerateReport(m)

	keys := make([]string, 0, len(report.Resources))
	for key := range report.Resources {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := report.Resources[keys[i]].ID, report.Resources[keys[j]].ID
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		if aerr == nil && berr == nil {
			return ai < bi
		}
		return a < b
	})

	var rows [][]string
	for _, key := range keys {
		resource := report.Resources[key]

		fields := make([]string, 0, len(resource.Fields))
		for field := range resource.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for i, field := range fields {
			// Student id only on first row
			id := ""
			if i == 0 {
				id = resource.ID
			}
			current := resource.Fields[field].Current
			rows = append(rows, []string{
				id,
				field,
				formatValue(current.Value),
				orDash(current.Source),
				formatTimestamp(current.Timestamp),
				current.Reason,
			})
		}
	}

	return Data{
		Headers: []string{"Student", "Field", "Value", "Source", "When", "Reason"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignRight, // Student
			AlignLeft,  // Field
			AlignLeft,  // Value
			AlignLeft,  // Source
			AlignLeft,  // When
			AlignLeft,  // Reason
		},
	}
}

// formatValue keeps long cells from blowing up the table width.
func formatValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "<empty>"
	}
	if r := []rune(v); len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return v
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(constants.TimeFormatRecord)
}
