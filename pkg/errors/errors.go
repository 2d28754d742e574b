// Package errors provides custom error types for the scholardb system.
// These errors enable programmatic error checking across the storage,
// normalization and consolidation layers.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is the standard library errors.As.
var As = errors.As

// Sentinel errors matched with errors.Is
var (
	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageNotFound indicates the backing store (workbook, directory, database) does not exist
	ErrStorageNotFound = errors.New("storage not found")

	// ErrSheetMissing indicates a required sheet is absent from the store
	ErrSheetMissing = errors.New("sheet missing")

	// ErrSchemaUnresolvable indicates a sheet has no usable identity column
	ErrSchemaUnresolvable = errors.New("schema unresolvable")

	// ErrWriteFailure indicates the consolidated result could not be persisted
	ErrWriteFailure = errors.New("write failure")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// StorageNotFoundError is returned when the store itself cannot be located.
// It is fatal and raised before any sheet is read.
type StorageNotFoundError struct {
	Driver string
	Path   string
	Err    error
}

// Error implements the error interface
func (e *StorageNotFoundError) Error() string {
	if e.Driver != "" {
		return fmt.Sprintf("%s storage not found at %s", e.Driver, e.Path)
	}
	return fmt.Sprintf("storage not found at %s", e.Path)
}

// Unwrap implements errors.Unwrap
func (e *StorageNotFoundError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *StorageNotFoundError) Is(target error) bool {
	return target == ErrStorageNotFound
}

// NewStorageNotFoundError creates a new StorageNotFoundError
func NewStorageNotFoundError(driver, path string, err error) *StorageNotFoundError {
	return &StorageNotFoundError{Driver: driver, Path: path, Err: err}
}

// SheetMissingError is returned when a named sheet is not present in the store.
type SheetMissingError struct {
	Sheet string
	Store string
}

// Error implements the error interface
func (e *SheetMissingError) Error() string {
	if e.Store != "" {
		return fmt.Sprintf("sheet %q not found in %s", e.Sheet, e.Store)
	}
	return fmt.Sprintf("sheet %q not found", e.Sheet)
}

// Is implements errors.Is support
func (e *SheetMissingError) Is(target error) bool {
	return target == ErrSheetMissing
}

// NewSheetMissingError creates a new SheetMissingError
func NewSheetMissingError(sheet, store string) *SheetMissingError {
	return &SheetMissingError{Sheet: sheet, Store: store}
}

// SchemaUnresolvableError is returned when a sheet has no recognizable name column.
type SchemaUnresolvableError struct {
	Sheet   string
	Shape   string
	Tried   []string
	Columns []string
}

// Error implements the error interface
func (e *SchemaUnresolvableError) Error() string {
	return fmt.Sprintf("sheet %q (shape %s) has no name column; tried %q", e.Sheet, e.Shape, e.Tried)
}

// Is implements errors.Is support
func (e *SchemaUnresolvableError) Is(target error) bool {
	return target == ErrSchemaUnresolvable
}

// WriteFailureError is returned when persisting a result fails.
// Backup holds the name of the pre-write copy, when one was taken.
type WriteFailureError struct {
	Store  string
	Backup string
	Err    error
}

// Error implements the error interface
func (e *WriteFailureError) Error() string {
	if e.Backup != "" {
		return fmt.Sprintf("failed to write %s (backup %s preserved): %v", e.Store, e.Backup, e.Err)
	}
	return fmt.Sprintf("failed to write %s: %v", e.Store, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *WriteFailureError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *WriteFailureError) Is(target error) bool {
	return target == ErrWriteFailure
}

// NewWriteFailureError creates a new WriteFailureError
func NewWriteFailureError(store, backup string, err error) *WriteFailureError {
	return &WriteFailureError{Store: store, Backup: backup, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStorageNotFound checks if an error means the store is missing
func IsStorageNotFound(err error) bool {
	return errors.Is(err, ErrStorageNotFound)
}

// IsSheetMissing checks if an error means a sheet is missing
func IsSheetMissing(err error) bool {
	return errors.Is(err, ErrSheetMissing)
}

// IsSchemaUnresolvable checks if an error means a sheet had no name column
func IsSchemaUnresolvable(err error) bool {
	return errors.Is(err, ErrSchemaUnresolvable)
}

// IsWriteFailure checks if an error is a persistence failure
func IsWriteFailure(err error) bool {
	return errors.Is(err, ErrWriteFailure)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "yaml", "xlsx", "csv", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "backup", "rename", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "open", "load", "consolidate", "assign"
	Resource  string // "store", "sheet", "archive", "shapes"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
