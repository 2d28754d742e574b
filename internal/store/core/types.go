// Package core defines the workbook store contract shared by every backend.
package core

import (
	"context"
	"strings"
	"time"

	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Driver identifies a concrete store implementation.
type Driver string

const (
	// DriverXLSX stores every table as a sheet of one .xlsx workbook.
	DriverXLSX Driver = "xlsx"
	// DriverCSV stores every table as <sheet>.csv inside a directory.
	DriverCSV Driver = "csv"
	// DriverSQLite stores tables in an embedded SQLite database.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres stores tables in a Postgres database.
	DriverPostgres Driver = "postgres"
	// DriverMemory keeps tables in process memory (tests, dry runs).
	DriverMemory Driver = "memory"
)

// Store is a named collection of tables read at the start of a run and
// rewritten in full at the end of it.
//
// Read returns a *errors.SheetMissingError when the sheet does not exist.
// Backup copies the whole store under BackupName and returns that name.
// WriteAll replaces the store contents with tables; on failure it returns a
// *errors.WriteFailureError and leaves the previous contents in place.
type Store interface {
	Driver() Driver
	Name() string
	Sheets(ctx context.Context) ([]string, error)
	Read(ctx context.Context, sheet string) (*records.Table, error)
	Backup(ctx context.Context, at time.Time) (string, error)
	WriteAll(ctx context.Context, tables records.Workbook) error
	Close() error
}

// BackupName returns <name>_backup_YYYYmmdd_HHMMSS.
func BackupName(name string, at time.Time) string {
	return name + constants.BackupSuffix + at.Format(constants.TimeFormatBackup)
}

// IsBackup reports whether name looks like a backup produced by BackupName.
func IsBackup(name string) bool {
	return strings.Contains(name, constants.BackupSuffix)
}
