package provenance_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugoscholars/scholardb/pkg/provenance"
)

func TestTracker(t *testing.T) {
	tr := provenance.NewTracker(true)
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tr.Track(provenance.ResourceTypeStudent, "7", "College", provenance.Provenance{
		Source: "C1", Value: "KU", Timestamp: at, Reason: provenance.ReasonFilled,
	})
	tr.Track(provenance.ResourceTypeStudent, "7", "District", provenance.Provenance{Source: "C2", Value: "Kaski"})
	tr.Track(provenance.ResourceTypeStudent, "8", "College", provenance.Provenance{Source: "C3", Value: "TU"})

	got := tr.FindByField(provenance.ResourceTypeStudent, "7", "College")
	require.Len(t, got, 1)
	assert.Equal(t, "College", got[0].Field)
	assert.Equal(t, at, got[0].Timestamp)

	byResource := tr.FindByResource(provenance.ResourceTypeStudent, "7")
	assert.Len(t, byResource, 2)
	assert.False(t, byResource["District"][0].Timestamp.IsZero())

	m := tr.Map()
	assert.Len(t, m, 3)
	m["student:7:College"] = nil
	assert.Len(t, tr.FindByField(provenance.ResourceTypeStudent, "7", "College"), 1)

	tr.Clear()
	assert.Empty(t, tr.Map())
}

func TestDisabledTracker(t *testing.T) {
	tr := provenance.NewTracker(false)
	tr.Track(provenance.ResourceTypeStudent, "1", "College", provenance.Provenance{Value: "KU"})

	assert.Nil(t, tr.Map())
	assert.Nil(t, tr.FindByField(provenance.ResourceTypeStudent, "1", "College"))
	assert.Nil(t, tr.FindByResource(provenance.ResourceTypeStudent, "1"))
}

func TestReport(t *testing.T) {
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	m := provenance.Map{
		"student:7:College": {
			{Source: "ACC C1", Value: "KU", Timestamp: first, Reason: provenance.ReasonCreated},
			{Source: "C1", Value: "KU", Timestamp: second, Reason: provenance.ReasonFilled},
		},
		"malformed": {{Value: "x"}},
	}

	report := provenance.GenerateReport(m)
	require.Len(t, report.Resources, 1)
	field := report.Resources["student:7"].Fields["College"]
	assert.Equal(t, "C1", field.Current.Source)
	assert.Len(t, field.History, 2)

	out := report.String()
	assert.Contains(t, out, "student: 7")
	assert.Contains(t, out, `College: "KU" (from C1, filled blank field)`)
	assert.Contains(t, out, "from ACC C1 at 2025-01-01 00:00:00")
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.yaml")
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	m := provenance.Map{
		"student:3:District": {{Source: "C2", Field: "District", Value: "Parsa", Timestamp: at, Reason: provenance.ReasonFilled}},
	}
	require.NoError(t, provenance.Save(path, m))

	pf, err := provenance.Load(path)
	require.NoError(t, err)
	require.NotNil(t, pf)
	got := pf.Provenance["student:3:District"]
	require.Len(t, got, 1)
	assert.Equal(t, "Parsa", got[0].Value)
	assert.True(t, at.Equal(got[0].Timestamp))

	missing, err := provenance.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
