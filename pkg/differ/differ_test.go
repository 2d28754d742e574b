package differ_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugoscholars/scholardb/pkg/differ"
	"github.com/ugoscholars/scholardb/pkg/records"
)

func table(rows ...records.Row) *records.Table {
	t := records.NewTable("Master_Database", records.Canonical...)
	t.Rows = rows
	return t
}

func TestTables(t *testing.T) {
	before := table(
		records.Row{"id": "1", "Full_Name": "Asha", "College": "", "Last_Updated": "a"},
		records.Row{"id": "2", "Full_Name": "Bikash", "District": "Parsa"},
		records.Row{"id": "3", "Full_Name": "Chandra"},
		records.Row{"id": "", "Full_Name": "No id"},
	)
	after := table(
		records.Row{"id": "1", "Full_Name": "Asha", "College": "KU", "Last_Updated": "b"},
		records.Row{"id": "2", "Full_Name": "Bikash", "District": "Parsa"},
		records.Row{"id": "4", "Full_Name": "Dipa"},
		records.Row{"id": "3", "Full_Name": "Chandra", "Remarks": "gone", "Extra": "x"},
	)

	cs := differ.New(differ.WithIgnoredFields(records.LastUpdated)).Tables(before, after)

	require.Len(t, cs.Added, 1)
	assert.Equal(t, "Dipa", cs.Added[0]["Full_Name"])
	assert.Empty(t, cs.Removed)

	require.Len(t, cs.Updated, 2)
	assert.Equal(t, 1, cs.Updated[0].ID)
	assert.Equal(t, []differ.FieldChange{
		{Field: "College", OldValue: "", NewValue: "KU", Type: differ.ChangeTypeAdd},
	}, cs.Updated[0].Changes)

	assert.Equal(t, 3, cs.Updated[1].ID)
	require.Len(t, cs.Updated[1].Changes, 2)
	assert.Equal(t, "Remarks", cs.Updated[1].Changes[0].Field)
	assert.Equal(t, "Extra", cs.Updated[1].Changes[1].Field)

	assert.Equal(t, differ.ChangesetSummary{Added: 1, Updated: 2, TotalChanges: 3}, cs.Summary)
	assert.True(t, cs.HasChanges())
	assert.Equal(t, "Students: 1 added, 2 updated (Total: 3 changes)", cs.String())
}

func TestTablesRemovedAndTypes(t *testing.T) {
	before := table(
		records.Row{"id": "1", "Full_Name": "Asha", "District": "Kaski"},
		records.Row{"id": "2", "Full_Name": "Bikash"},
	)
	after := table(records.Row{"id": "1", "Full_Name": "Asha Rai", "District": ""})

	cs := differ.New().Tables(before, after)

	require.Len(t, cs.Removed, 1)
	require.Len(t, cs.Updated, 1)
	types := map[string]differ.ChangeType{}
	for _, c := range cs.Updated[0].Changes {
		types[c.Field] = c.Type
	}
	assert.Equal(t, differ.ChangeTypeUpdate, types["Full_Name"])
	assert.Equal(t, differ.ChangeTypeRemove, types["District"])
}

func TestNoChanges(t *testing.T) {
	cs := differ.New().Tables(nil, table())
	assert.True(t, cs.IsEmpty())
	assert.Equal(t, "No changes detected", cs.String())
}

func TestPrint(t *testing.T) {
	before := table(records.Row{"id": "1", "Full_Name": "Asha"})
	after := table(
		records.Row{"id": "1", "Full_Name": "Asha", "College": "KU"},
		records.Row{"id": "2", "Full_Name": "Bikash", "Source_Sheet": "C2"},
	)

	var buf bytes.Buffer
	differ.New().Tables(before, after).Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "Added Students (1)")
	assert.Contains(t, out, "2 Bikash (C2)")
	assert.Contains(t, out, `College: "" → "KU"`)
}
