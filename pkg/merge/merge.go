// Package merge folds an incoming source record into an existing master
// record. Merging is pure: it never mutates its inputs and reports every
// field it changed so callers can record provenance.
package merge

import (
	"slices"
	"strings"
	"time"

	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// PolicyType names a merge policy.
type PolicyType string

// String returns the string representation of a policy type.
func (p PolicyType) String() string {
	return string(p)
}

const (
	// PolicyTypeFirstWriterWins fills blank fields only; populated values are never overwritten.
	PolicyTypeFirstWriterWins PolicyType = "first-writer-wins"
)

// FieldChange describes one field a merge modified.
type FieldChange struct {
	Field  string
	From   string
	To     string
	Source string // sheet the new value came from
}

// Policy decides how an incoming record updates an existing one.
type Policy interface {
	Type() PolicyType
	Description() string
	Merge(existing, incoming records.Row, now time.Time) (records.Row, []FieldChange)
}

// FirstWriterWins is the default policy.
var FirstWriterWins Policy = firstWriterWins{}

// Merge applies the default policy.
func Merge(existing, incoming records.Row, now time.Time) (records.Row, []FieldChange) {
	return FirstWriterWins.Merge(existing, incoming, now)
}

type firstWriterWins struct{}

func (firstWriterWins) Type() PolicyType { return PolicyTypeFirstWriterWins }

func (firstWriterWins) Description() string {
	return "Fills blank master fields from later sources and unions Source_Sheet"
}

// Merge returns the merged record and the list of changed fields.
// id is never touched and Last_Updated is always set to now.
func (firstWriterWins) Merge(existing, incoming records.Row, now time.Time) (records.Row, []FieldChange) {
	merged := existing.Clone()
	source := strings.TrimSpace(incoming[records.SourceSheet])

	var changes []FieldChange
	for _, field := range fieldOrder(incoming) {
		value := incoming[field]
		switch field {
		case records.IDField, records.LastUpdated:
			continue
		case records.SourceSheet:
			union := UnionSources(merged[field], value)
			if union != merged[field] {
				changes = append(changes, FieldChange{Field: field, From: merged[field], To: union, Source: source})
				merged[field] = union
			}
		default:
			if records.Blank(merged[field]) && !records.Blank(value) {
				changes = append(changes, FieldChange{Field: field, From: merged[field], To: value, Source: source})
				merged[field] = value
			}
		}
	}

	merged[records.LastUpdated] = now.Format(constants.TimeFormatRecord)
	return merged, changes
}

// fieldOrder lists incoming fields in canonical order, then any others sorted.
func fieldOrder(row records.Row) []string {
	fields := make([]string, 0, len(row))
	for _, c := range records.Canonical {
		if _, ok := row[c]; ok {
			fields = append(fields, c)
		}
	}
	var extra []string
	for k := range row {
		if !records.IsCanonical(k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(fields, extra...)
}

// SplitSources parses a Source_Sheet cell into its trimmed, non-empty parts.
func SplitSources(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// UnionSources returns the sorted, de-duplicated union of two Source_Sheet cells.
func UnionSources(a, b string) string {
	all := append(SplitSources(a), SplitSources(b)...)
	slices.Sort(all)
	return strings.Join(slices.Compact(all), ", ")
}
