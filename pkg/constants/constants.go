// Package constants provides shared constants used throughout the scholardb codebase.
// This includes sheet names, timestamp layouts, timeouts and file permissions
// that must stay consistent between the engine, the stores and the CLI.
package constants

import "time"

// Sheet constants
const (
	// MasterSheet is the name of the canonical consolidated table
	MasterSheet = "Master_Database"

	// BackupSuffix separates a store name from its backup timestamp
	BackupSuffix = "_backup_"
)

// DefaultSheetOrder is the order in which source tables are consolidated.
// Earlier tables win when two sources disagree on a blank master field.
var DefaultSheetOrder = []string{"ACC C1", "ACC C2", "C1", "C2", "C3", "Database"}

// Timestamp layouts
const (
	// TimeFormatRecord is the layout written to Last_Updated
	TimeFormatRecord = "2006-01-02 15:04:05"

	// TimeFormatBackup is the layout appended to backup names
	TimeFormatBackup = "20060102_150405"

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)

// Timeout constants
const (
	// DefaultTimeout is the standard timeout for opening a store
	DefaultTimeout = 10 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ArchiveUploadTimeout bounds a single snapshot upload
	ArchiveUploadTimeout = 2 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for files that may hold credentials (rw-------)
	SecureFilePermissions = 0600
)

// Student_ID constants
const (
	// StudentIDPrefix starts every generated Student_ID
	StudentIDPrefix = "UGO"

	// DefaultCohort is assigned when a Source_Sheet names no known cohort
	DefaultCohort = "C1"
)

// Path constants
const (
	// DefaultConfigName is the config file base name looked up in $HOME and the working directory
	DefaultConfigName = ".scholardb"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "SCHOLARDB"
)
