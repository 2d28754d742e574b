package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugoscholars/scholardb/internal/store/core"
	serrors "github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

func workbook() records.Workbook {
	master := records.FromValues("Master_Database", [][]string{
		{"id", "Full_Name", "Source_Sheet"},
		{"1", "Ram Thapa", "C1"},
		{"2", "Sita Rai", "ACC C1"},
	})
	c1 := records.FromValues("C1", [][]string{
		{"Name", "District"},
		{"Hari KC", "Kaski"},
	})
	return records.Workbook{master, c1}
}

func createStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Scholars.xlsx")
	s, err := Create(path, workbook())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenMissingWorkbook(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.True(t, serrors.IsStorageNotFound(err))
}

func TestReadRoundTrip(t *testing.T) {
	s := createStore(t)
	ctx := context.Background()

	assert.Equal(t, core.DriverXLSX, s.Driver())
	assert.Equal(t, "Scholars", s.Name())

	sheets, err := s.Sheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Master_Database", "C1"}, sheets)

	master, err := s.Read(ctx, "Master_Database")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Full_Name", "Source_Sheet"}, master.Columns)
	require.Len(t, master.Rows, 2)
	assert.Equal(t, "Sita Rai", master.Rows[1]["Full_Name"])
	id, ok := master.Rows[1].ID()
	require.True(t, ok)
	assert.Equal(t, 2, id)
}

func TestReadMissingSheet(t *testing.T) {
	s := createStore(t)
	_, err := s.Read(context.Background(), "ACC C2")
	require.Error(t, err)
	assert.True(t, serrors.IsSheetMissing(err))
}

func TestBackupCopiesWorkbook(t *testing.T) {
	s := createStore(t)
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	name, err := s.Backup(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, "Scholars_backup_20250304_050607.xlsx", filepath.Base(name))

	backup, err := Open(name)
	require.NoError(t, err)
	defer backup.Close()
	sheets, err := backup.Sheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Master_Database", "C1"}, sheets)
}

func TestWriteAllReplacesContents(t *testing.T) {
	s := createStore(t)
	ctx := context.Background()

	wb := workbook()
	wb.Master().Rows = append(wb.Master().Rows, records.Row{"id": "3", "Full_Name": "Gita Gurung", "Source_Sheet": "C2"})
	require.NoError(t, s.WriteAll(ctx, wb))

	master, err := s.Read(ctx, "Master_Database")
	require.NoError(t, err)
	require.Len(t, master.Rows, 3)
	assert.Equal(t, "Gita Gurung", master.Rows[2]["Full_Name"])

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteAllCancelled(t *testing.T) {
	s := createStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WriteAll(ctx, workbook())
	require.Error(t, err)
	assert.True(t, serrors.IsWriteFailure(err))
}

func TestEncodeEmptyCellsRoundTrip(t *testing.T) {
	tbl := records.FromValues("Database", [][]string{
		{"Name", "College", "Remarks"},
		{"Ram", "", "late"},
	})
	data, err := Encode(records.Workbook{tbl})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "db.xlsx")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Read(context.Background(), "Database")
	require.NoError(t, err)
	assert.Equal(t, records.Row{"Name": "Ram", "College": "", "Remarks": "late"}, got.Rows[0])
}
