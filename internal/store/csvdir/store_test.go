package csvdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

func seed(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scholars")
	s, err := Create(dir, records.Workbook{
		records.FromValues("C2", [][]string{{"Name", "Address"}, {"Asha Lama", "Pokhara, Ward 8"}}),
		records.FromValues("Master_Database", [][]string{{"id", "Full_Name"}, {"1", "Ram Thapa"}}),
		records.FromValues("ACC C1", [][]string{{"Student Name"}, {"Bina"}}),
	})
	require.NoError(t, err)
	return s
}

func TestOpenMissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, serrors.IsStorageNotFound(err))
}

func TestOpenRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))
	_, err := Open(path)
	assert.True(t, serrors.IsStorageNotFound(err))
}

func TestSheetsMasterFirst(t *testing.T) {
	s := seed(t)
	sheets, err := s.Sheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Master_Database", "ACC C1", "C2"}, sheets)
}

func TestReadQuotedCells(t *testing.T) {
	s := seed(t)
	tbl, err := s.Read(context.Background(), "C2")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Pokhara, Ward 8", tbl.Rows[0]["Address"])
}

func TestReadRaggedRows(t *testing.T) {
	s := seed(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "C3.csv"), []byte("Name,College\nRam\n"), 0o644))

	tbl, err := s.Read(context.Background(), "C3")
	require.NoError(t, err)
	assert.Equal(t, records.Row{"Name": "Ram", "College": ""}, tbl.Rows[0])
}

func TestReadMissingSheet(t *testing.T) {
	s := seed(t)
	_, err := s.Read(context.Background(), "Database")
	assert.True(t, serrors.IsSheetMissing(err))
}

func TestBackupCopiesDirectory(t *testing.T) {
	s := seed(t)
	name, err := s.Backup(context.Background(), time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "scholars_backup_20250102_030405", filepath.Base(name))

	backup, err := Open(name)
	require.NoError(t, err)
	sheets, err := backup.Sheets(context.Background())
	require.NoError(t, err)
	assert.Len(t, sheets, 3)
}

func TestWriteAllSwapsDirectory(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	master := records.FromValues("Master_Database", [][]string{{"id", "Full_Name"}, {"1", "Ram Thapa"}, {"2", "Sita Rai"}})
	require.NoError(t, s.WriteAll(ctx, records.Workbook{master}))

	sheets, err := s.Sheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Master_Database"}, sheets)

	got, err := s.Read(ctx, "Master_Database")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 2)

	entries, err := os.ReadDir(filepath.Dir(s.Dir()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staging directories must be cleaned up")
}

func TestWriteAllFailureKeepsOriginal(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	bad := records.NewTable("nested/dir", "Name")
	err := s.WriteAll(ctx, records.Workbook{bad})
	require.Error(t, err)
	assert.True(t, serrors.IsWriteFailure(err))

	sheets, err := s.Sheets(ctx)
	require.NoError(t, err)
	assert.Len(t, sheets, 3)
}
