package records_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugoscholars/scholardb/pkg/records"
)

func TestBlank(t *testing.T) {
	assert.True(t, records.Blank(""))
	assert.True(t, records.Blank(" \t\n"))
	assert.False(t, records.Blank(" x "))
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{" 7 ", 7, true},
		{"12.0", 12, true},
		{"12.5", 0, false},
		{"0", 0, false},
		{"-3", -3, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := records.ParseID(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFromValues(t *testing.T) {
	table := records.FromValues("C1", [][]string{
		{"Full Name", "", "District", "District"},
		{"Asha", "ignored", "Kaski"},
		{"Bikash", "x", "Parsa", "dup"},
	})

	assert.Equal(t, []string{"Full Name", "District"}, table.Columns)
	want := []records.Row{
		{"Full Name": "Asha", "District": "Kaski"},
		{"Full Name": "Bikash", "District": "Parsa"},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, [][]string{
		{"Full Name", "District"},
		{"Asha", "Kaski"},
		{"Bikash", "Parsa"},
	}, table.Values())

	assert.Empty(t, records.FromValues("empty", nil).Columns)
}

func TestDropEmptyRowsAndMaxID(t *testing.T) {
	table := records.NewTable("Master_Database", "id", "Full_Name")
	table.Rows = []records.Row{
		{"id": "3", "Full_Name": "Asha"},
		{"id": "", "Full_Name": "  "},
		{"id": "9", "Full_Name": "Bikash"},
		{"id": "bad", "Full_Name": "Chandra"},
	}

	assert.Equal(t, 1, table.DropEmptyRows())
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, 9, table.MaxID())
	assert.Equal(t, 0, records.NewTable("x").MaxID())
}

func TestEnsureCanonical(t *testing.T) {
	table := records.NewTable("Master_Database", "Full_Name", "Extra")
	table.Rows = []records.Row{{"Full_Name": "Asha", "Extra": "drop me"}}

	table.EnsureCanonical()

	assert.Equal(t, records.Canonical, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Asha", table.Rows[0][records.FullName])
	assert.NotContains(t, table.Rows[0], "Extra")
	assert.Len(t, table.Rows[0], len(records.Canonical))
}

func TestBackfillIDs(t *testing.T) {
	table := records.NewTable("Master_Database", "Full_Name", "District")
	table.Rows = []records.Row{
		{"Full_Name": "Asha", "District": "Kaski"},
		{"Full_Name": "", "District": ""},
		{"Full_Name": "Bikash", "District": ""},
	}

	n := records.BackfillIDs(table)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"id", "Full_Name", "District"}, table.Columns)
	assert.Equal(t, "1", table.Rows[0]["id"])
	assert.Equal(t, "2", table.Rows[1]["id"])
}

func TestWorkbook(t *testing.T) {
	var wb records.Workbook
	wb = wb.Put(records.NewTable("C1"))
	wb = wb.Put(records.NewTable("Master_Database", "id"))
	wb = wb.Put(records.NewTable("C1", "Full Name"))

	assert.Equal(t, []string{"C1", "Master_Database"}, wb.Names())
	assert.Equal(t, []string{"Full Name"}, wb.Get("C1").Columns)
	assert.NotNil(t, wb.Master())
	assert.Nil(t, wb.Get("C9"))
}

func TestCloneIsDeep(t *testing.T) {
	table := records.NewTable("C1", "Full Name")
	table.Rows = []records.Row{{"Full Name": "Asha"}}

	cp := table.Clone()
	cp.Rows[0]["Full Name"] = "Changed"
	cp.Columns[0] = "Other"

	assert.Equal(t, "Asha", table.Rows[0]["Full Name"])
	assert.Equal(t, "Full Name", table.Columns[0])
}
