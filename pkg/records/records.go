// Package records defines the tabular data model shared by the consolidation
// engine and the storage backends: a Table of string-valued Rows plus the
// canonical Master_Database column layout.
package records

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ugoscholars/scholardb/pkg/constants"
)

// Canonical field names referenced by the engine.
const (
	IDField     = "id"
	StudentID   = "Student_ID"
	FullName    = "Full_Name"
	SourceSheet = "Source_Sheet"
	Cohort      = "Cohort"
	College     = "College"
	LastUpdated = "Last_Updated"
)

// Canonical is the ordered column layout of the master table.
var Canonical = []string{
	IDField,
	StudentID,
	FullName,
	SourceSheet,
	Cohort,
	"District",
	"Address",
	"Contact_Number",
	"Father_Name",
	"Father_Contact",
	"Mother_Name",
	"Mother_Contact",
	"Program",
	College,
	"Current_Year",
	"Program_Structure",
	"Scholarship_Type",
	"Scholarship_Percentage",
	"Scholarship_Starting_Year",
	"Scholarship_Status",
	"Remarks",
	"Total_College_Fee",
	"Total_Scholarship_Amount",
	"Total_Amount_Paid",
	"Total_Due",
	"Books_Total",
	"Uniform_Total",
	"Books_Uniform_Total",
	"Year_1_Fee",
	"Year_1_Payment",
	"Year_2_Fee",
	"Year_2_Payment",
	"Year_3_Fee",
	"Year_3_Payment",
	"Year_4_Fee",
	"Year_4_Payment",
	"Year_1_GPA",
	"Year_2_GPA",
	"Year_3_GPA",
	"Year_4_GPA",
	"Overall_Status",
	"Participation",
	LastUpdated,
}

// IsCanonical reports whether field is part of the master layout.
func IsCanonical(field string) bool {
	return slices.Contains(Canonical, field)
}

// Blank reports whether a cell value is empty or whitespace only.
func Blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// Row is one record keyed by column name.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Empty reports whether every cell in the row is blank.
func (r Row) Empty() bool {
	for _, v := range r {
		if !Blank(v) {
			return false
		}
	}
	return true
}

// ID parses the numeric id of a master row.
// Spreadsheet exports sometimes carry integral floats ("12.0"); those are accepted.
func (r Row) ID() (int, bool) {
	return ParseID(r[IDField])
}

// ParseID parses a positive integer id cell.
func ParseID(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Table is a named sheet: an ordered header and its rows.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given header.
func NewTable(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: slices.Clone(columns)}
}

// FromValues builds a table from a header row followed by data rows.
// Columns with a blank header are dropped and short rows are padded with "".
func FromValues(name string, values [][]string) *Table {
	t := &Table{Name: name}
	if len(values) == 0 {
		return t
	}

	keep := make([]int, 0, len(values[0]))
	for i, h := range values[0] {
		if Blank(h) || slices.Contains(t.Columns, h) {
			continue
		}
		keep = append(keep, i)
		t.Columns = append(t.Columns, h)
	}

	for _, raw := range values[1:] {
		row := make(Row, len(keep))
		for j, i := range keep {
			if i < len(raw) {
				row[t.Columns[j]] = raw[i]
			} else {
				row[t.Columns[j]] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Values renders the table as a header row followed by data rows.
func (t *Table) Values() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, slices.Clone(t.Columns))
	for _, row := range t.Rows {
		line := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			line[i] = row[c]
		}
		out = append(out, line)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: slices.Clone(t.Columns), Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// HasColumn reports whether the header contains column.
func (t *Table) HasColumn(column string) bool {
	return slices.Contains(t.Columns, column)
}

// AddColumn appends column to the header if missing.
func (t *Table) AddColumn(column string) {
	if !t.HasColumn(column) {
		t.Columns = append(t.Columns, column)
	}
}

// DropEmptyRows removes rows whose cells are all blank and returns how many were removed.
func (t *Table) DropEmptyRows() int {
	before := len(t.Rows)
	t.Rows = slices.DeleteFunc(t.Rows, Row.Empty)
	return before - len(t.Rows)
}

// MaxID returns the highest numeric id in the table, or 0.
func (t *Table) MaxID() int {
	highest := 0
	for _, r := range t.Rows {
		if id, ok := r.ID(); ok && id > highest {
			highest = id
		}
	}
	return highest
}

// EnsureCanonical rewrites the header to the canonical layout.
// Missing fields become empty cells and non-canonical columns are dropped.
func (t *Table) EnsureCanonical() {
	t.Columns = slices.Clone(Canonical)
	for i, r := range t.Rows {
		row := make(Row, len(Canonical))
		for _, c := range Canonical {
			row[c] = r[c]
		}
		t.Rows[i] = row
	}
}

// NumberRows places id as the first column and numbers rows 1..N in row order,
// replacing any existing id values.
func NumberRows(t *Table) {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, IDField)
	for _, c := range t.Columns {
		if c != IDField {
			cols = append(cols, c)
		}
	}
	t.Columns = cols

	for i, r := range t.Rows {
		r[IDField] = strconv.Itoa(i + 1)
	}
}

// BackfillIDs drops fully-empty rows and numbers the remainder with NumberRows.
// It returns the number of rows numbered.
func BackfillIDs(t *Table) int {
	t.DropEmptyRows()
	NumberRows(t)
	return len(t.Rows)
}

// Workbook is an ordered set of tables, as held by a store.
type Workbook []*Table

// Names returns the table names in order.
func (w Workbook) Names() []string {
	names := make([]string, len(w))
	for i, t := range w {
		names[i] = t.Name
	}
	return names
}

// Get returns the table named name, or nil.
func (w Workbook) Get(name string) *Table {
	for _, t := range w {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Put replaces the table with the same name in place, or appends it.
func (w Workbook) Put(t *Table) Workbook {
	for i, existing := range w {
		if existing.Name == t.Name {
			w[i] = t
			return w
		}
	}
	return append(w, t)
}

// Master returns the master table, or nil when the workbook has none.
func (w Workbook) Master() *Table {
	return w.Get(constants.MasterSheet)
}
