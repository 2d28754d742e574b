package schema

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Binding is a resolved field: the raw columns present in the sheet for one
// canonical field, in priority order.
type Binding struct {
	Field    string
	Columns  []string
	Coalesce bool
}

// Mapping is the resolved column mapping of one sheet.
type Mapping struct {
	Sheet      string
	Shape      string
	NameColumn string
	Fields     []Binding
	// Unmapped lists raw columns no binding uses.
	Unmapped []string
}

// CleanColumn trims a raw header, turns newlines into spaces and collapses
// runs of whitespace.
func CleanColumn(raw string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(raw, "\n", " ")), " ")
}

// Normalize resolves sheet columns against the built-in shape table.
func Normalize(sheet string, columns []string) (*Mapping, error) {
	return Default().Normalize(sheet, columns)
}

// Normalize resolves the raw columns of sheet into a Mapping. It fails with a
// SchemaUnresolvableError when no accepted name column is present.
func (s *Shapes) Normalize(sheet string, columns []string) (*Mapping, error) {
	fold := cases.Fold()
	key := func(c string) string { return fold.String(CleanColumn(c)) }

	// first raw column wins when two clean to the same key
	present := make(map[string]string, len(columns))
	for _, c := range columns {
		k := key(c)
		if _, dup := present[k]; !dup && k != "" {
			present[k] = c
		}
	}
	used := make(map[string]bool, len(columns))

	shape := s.ShapeFor(sheet)
	m := &Mapping{Sheet: sheet, Shape: shape}

	for _, spelling := range s.NameColumns {
		if raw, ok := present[key(spelling)]; ok {
			m.NameColumn = raw
			used[raw] = true
			break
		}
	}
	if m.NameColumn == "" {
		return nil, &errors.SchemaUnresolvableError{
			Sheet:   sheet,
			Shape:   shape,
			Tried:   s.NameColumns,
			Columns: columns,
		}
	}

	for _, f := range s.Shapes[shape] {
		b := Binding{Field: f.Field, Coalesce: f.Coalesce}
		for _, spelling := range f.Columns {
			raw, ok := present[key(spelling)]
			if !ok || raw == m.NameColumn {
				continue
			}
			b.Columns = append(b.Columns, raw)
			used[raw] = true
			if !f.Coalesce {
				break
			}
		}
		if len(b.Columns) > 0 {
			m.Fields = append(m.Fields, b)
		}
	}

	for _, c := range columns {
		if !used[c] && !records.Blank(c) {
			m.Unmapped = append(m.Unmapped, c)
		}
	}
	return m, nil
}

// Name returns the trimmed identity value of a raw row.
func (m *Mapping) Name(row records.Row) string {
	return strings.TrimSpace(row[m.NameColumn])
}

// Record builds the canonical fields of a raw row. Fields whose columns are
// absent from the sheet are omitted; Full_Name and Source_Sheet are always set.
func (m *Mapping) Record(row records.Row) records.Row {
	out := make(records.Row, len(m.Fields)+2)
	for _, b := range m.Fields {
		out[b.Field] = b.value(row)
	}
	out[records.FullName] = m.Name(row)
	out[records.SourceSheet] = m.Sheet
	return out
}

func (b Binding) value(row records.Row) string {
	if !b.Coalesce {
		return row[b.Columns[0]]
	}
	for _, c := range b.Columns {
		if v := strings.TrimSpace(row[c]); v != "" {
			return v
		}
	}
	return ""
}
