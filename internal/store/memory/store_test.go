package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

func TestReadReturnsCopies(t *testing.T) {
	master := records.FromValues("Master_Database", [][]string{{"id", "Full_Name"}, {"1", "Ram"}})
	s := New("scholars", master)

	got, err := s.Read(context.Background(), "Master_Database")
	require.NoError(t, err)
	got.Rows[0]["Full_Name"] = "changed"

	again, err := s.Read(context.Background(), "Master_Database")
	require.NoError(t, err)
	assert.Equal(t, "Ram", again.Rows[0]["Full_Name"])
	assert.Equal(t, "Ram", master.Rows[0]["Full_Name"])
}

func TestReadMissing(t *testing.T) {
	_, err := New("").Read(context.Background(), "C1")
	assert.True(t, serrors.IsSheetMissing(err))
}

func TestBackupAndWrite(t *testing.T) {
	s := New("scholars", records.NewTable("C1", "Name"))
	ctx := context.Background()

	name, err := s.Backup(ctx, time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "scholars_backup_20250203_040506", name)

	require.NoError(t, s.WriteAll(ctx, records.Workbook{records.NewTable("Master_Database", "id")}))
	sheets, err := s.Sheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Master_Database"}, sheets)
	assert.Equal(t, []string{"C1"}, s.BackupTables(name).Names())
	assert.Nil(t, s.BackupTables("other"))
	assert.Equal(t, 1, s.Writes())
}

func TestFailWrites(t *testing.T) {
	s := New("scholars", records.NewTable("C1", "Name"))
	s.FailWrites(errors.New("disk full"))

	err := s.WriteAll(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, serrors.IsWriteFailure(err))
	assert.Equal(t, 0, s.Writes())

	sheets, _ := s.Sheets(context.Background())
	assert.Equal(t, []string{"C1"}, sheets)
}
