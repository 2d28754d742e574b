package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugoscholars/scholardb/internal/store/core"
	serrors "github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

func newSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := CreateSQLite(context.Background(), filepath.Join(t.TempDir(), "scholars.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleWorkbook() records.Workbook {
	return records.Workbook{
		records.FromValues("Master_Database", [][]string{{"id", "Full_Name", "College"}, {"1", "Ram Thapa", ""}}),
		records.FromValues("C1", [][]string{{"Name", "College"}, {"Ram Thapa", "Prithvi Campus"}}),
	}
}

func TestOpenSQLiteMissingFile(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	assert.True(t, serrors.IsStorageNotFound(err))
}

func TestEmptyDatabaseHasNoSheets(t *testing.T) {
	s := newSQLite(t)
	sheets, err := s.Sheets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sheets)

	_, err = s.Read(context.Background(), "Master_Database")
	assert.True(t, serrors.IsSheetMissing(err))
}

func TestWriteAllThenRead(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.WriteAll(ctx, sampleWorkbook()))

	assert.Equal(t, core.DriverSQLite, s.Driver())
	assert.Equal(t, "scholars", s.Name())

	sheets, err := s.Sheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Master_Database", "C1"}, sheets)

	c1, err := s.Read(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "College"}, c1.Columns)
	assert.Equal(t, "Prithvi Campus", c1.Rows[0]["College"])

	// a second write replaces rather than appends
	require.NoError(t, s.WriteAll(ctx, sampleWorkbook()[:1]))
	sheets, err = s.Sheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Master_Database"}, sheets)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scholars.db")
	ctx := context.Background()

	s, err := CreateSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.WriteAll(ctx, sampleWorkbook()))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	master, err := reopened.Read(ctx, "Master_Database")
	require.NoError(t, err)
	assert.Len(t, master.Rows, 1)
}

func TestBackupSnapshot(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.WriteAll(ctx, sampleWorkbook()))

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	name, err := s.Backup(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, "scholars_backup_20250601_120000", name)

	// same second twice overwrites instead of failing
	_, err = s.Backup(ctx, at)
	require.NoError(t, err)

	backups, err := s.Backups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, backups)
}

func TestWriteAllCancelledIsWriteFailure(t *testing.T) {
	s := newSQLite(t)
	require.NoError(t, s.WriteAll(context.Background(), sampleWorkbook()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.WriteAll(ctx, sampleWorkbook()[:1])
	require.Error(t, err)
	assert.True(t, serrors.IsWriteFailure(err))

	sheets, err := s.Sheets(context.Background())
	require.NoError(t, err)
	assert.Len(t, sheets, 2)
}

func TestPostgresUsesPgxDriver(t *testing.T) {
	var gotDriver, gotDSN string
	boom := errors.New("no network in tests")
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dsn
		return nil, boom
	})
	defer restore()

	_, err := OpenPostgres(context.Background(), "postgres://localhost/scholars?sslmode=disable")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, "postgres://localhost/scholars?sslmode=disable", gotDSN)
}

func TestBindPlaceholders(t *testing.T) {
	q := `INSERT INTO t(a, b) VALUES(?, ?)`
	assert.Equal(t, q, sqliteDialect.bind(q))
	assert.Equal(t, `INSERT INTO t(a, b) VALUES($1, $2)`, postgresDialect.bind(q))
}

func TestDatabaseName(t *testing.T) {
	assert.Equal(t, "scholars", databaseName("postgres://u:p@db:5432/scholars?sslmode=disable"))
	assert.Equal(t, "scholardb", databaseName("postgres://db:5432"))
	assert.Equal(t, "scholardb", databaseName("host=db user=u"))
}
