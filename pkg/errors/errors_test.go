package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ugoscholars/scholardb/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "sheet_order",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field sheet_order: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestStorageNotFoundError(t *testing.T) {
	cause := errors.New("stat students.xlsx: no such file or directory")
	err := pkgerrors.NewStorageNotFoundError("xlsx", "data/students.xlsx", cause)

	assert.Equal(t, "xlsx storage not found at data/students.xlsx", err.Error())
	assert.True(t, pkgerrors.IsStorageNotFound(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, pkgerrors.IsWriteFailure(err))
}

func TestSheetMissingError(t *testing.T) {
	err := pkgerrors.NewSheetMissingError("ACC C2", "students.xlsx")
	assert.Equal(t, `sheet "ACC C2" not found in students.xlsx`, err.Error())
	assert.True(t, pkgerrors.IsSheetMissing(err))

	wrapped := pkgerrors.WrapResource("read", "sheet", "ACC C2", err)
	assert.True(t, pkgerrors.IsSheetMissing(wrapped))

	var target *pkgerrors.SheetMissingError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "ACC C2", target.Sheet)
}

func TestSchemaUnresolvableError(t *testing.T) {
	err := &pkgerrors.SchemaUnresolvableError{
		Sheet: "C3",
		Shape: "cohort",
		Tried: []string{"Full Name", "Scholar Name"},
	}
	assert.Contains(t, err.Error(), `sheet "C3"`)
	assert.Contains(t, err.Error(), "cohort")
	assert.True(t, pkgerrors.IsSchemaUnresolvable(fmt.Errorf("skip: %w", err)))
}

func TestWriteFailureError(t *testing.T) {
	t.Run("with backup", func(t *testing.T) {
		cause := errors.New("disk full")
		err := pkgerrors.NewWriteFailureError("students.xlsx", "students_backup_20240101_120000.xlsx", cause)
		assert.Contains(t, err.Error(), "backup students_backup_20240101_120000.xlsx preserved")
		assert.True(t, pkgerrors.IsWriteFailure(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("without backup", func(t *testing.T) {
		err := pkgerrors.NewWriteFailureError("students.db", "", errors.New("tx aborted"))
		assert.Equal(t, "failed to write students.db: tx aborted", err.Error())
	})
}

func TestConfigError(t *testing.T) {
	cause := errors.New("unknown driver")
	err := &pkgerrors.ConfigError{Component: "store", Message: "driver must be one of xlsx, csv, sqlite, postgres, memory", Err: cause}
	assert.Contains(t, err.Error(), "configuration error in store")
	assert.ErrorIs(t, err, cause)
}

func TestParseError(t *testing.T) {
	t.Run("file only", func(t *testing.T) {
		err := pkgerrors.NewParseError("csv", "C1.csv", "wrong number of fields", nil)
		assert.Equal(t, "parse error in csv file C1.csv: wrong number of fields", err.Error())
	})

	t.Run("no file", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "xlsx", Message: "corrupt zip"}
		assert.Equal(t, "xlsx parse error: corrupt zip", err.Error())
	})
}

func TestIOError(t *testing.T) {
	cause := errors.New("permission denied")
	err := pkgerrors.NewIOError("backup", "/data/students.xlsx", cause)
	assert.Equal(t, "IO error during backup of /data/students.xlsx: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)

	noPath := &pkgerrors.IOError{Operation: "write", Message: "closed"}
	assert.Equal(t, "IO error during write: closed", noPath.Error())
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.NewResourceError("open", "store", "students.db", errors.New("locked"))
	assert.Equal(t, "failed to open store students.db: locked", err.Error())

	noID := &pkgerrors.ResourceError{Operation: "load", Resource: "shapes", Message: "empty"}
	assert.Equal(t, "failed to load shapes: empty", noID.Error())
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("read", "x", nil))
	assert.Nil(t, pkgerrors.WrapResource("read", "sheet", "C1", nil))
	assert.Nil(t, pkgerrors.WrapParse("yaml", "x", nil))

	cause := errors.New("boom")

	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(pkgerrors.WrapIO("read", "a.csv", cause), &ioErr))
	assert.Equal(t, "a.csv", ioErr.Path)

	var parseErr *pkgerrors.ParseError
	require.True(t, errors.As(pkgerrors.WrapParse("yaml", "shapes.yaml", cause), &parseErr))
	assert.Equal(t, "shapes.yaml", parseErr.File)
}
