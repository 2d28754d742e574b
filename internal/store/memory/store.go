// Package memory implements an in-memory workbook Store for tests and dry runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ugoscholars/scholardb/internal/store/core"
	serrors "github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Store implements core.Store backed by process memory.
type Store struct {
	mu       sync.RWMutex
	name     string
	tables   records.Workbook
	backups  map[string]records.Workbook
	writeErr error
	writes   int
}

// New returns a store holding copies of tables.
func New(name string, tables ...*records.Table) *Store {
	if name == "" {
		name = "memory"
	}
	return &Store{name: name, tables: clone(tables), backups: make(map[string]records.Workbook)}
}

// Driver returns the store driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Name returns the store name given to New.
func (s *Store) Name() string { return s.name }

// Sheets returns table names in insertion order.
func (s *Store) Sheets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Names(), nil
}

// Read returns a copy of the named table.
func (s *Store) Read(_ context.Context, sheet string) (*records.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.tables.Get(sheet)
	if t == nil {
		return nil, serrors.NewSheetMissingError(sheet, s.name)
	}
	return t.Clone(), nil
}

// Backup keeps a copy of every table under BackupName.
func (s *Store) Backup(ctx context.Context, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name := core.BackupName(s.name, at)
	s.backups[name] = clone(s.tables)
	return name, nil
}

// WriteAll replaces the stored tables, or fails with the error set by FailWrites.
func (s *Store) WriteAll(ctx context.Context, tables records.Workbook) error {
	if err := ctx.Err(); err != nil {
		return serrors.NewWriteFailureError(s.name, "", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return serrors.NewWriteFailureError(s.name, "", s.writeErr)
	}
	s.tables = clone(tables)
	s.writes++
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// FailWrites makes every later WriteAll fail with err. A nil err clears it.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes counts successful WriteAll calls.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// BackupTables returns a copy of a backup taken earlier, or nil.
func (s *Store) BackupTables(name string) records.Workbook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wb, ok := s.backups[name]
	if !ok {
		return nil
	}
	return clone(wb)
}

func clone(tables []*records.Table) records.Workbook {
	out := make(records.Workbook, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.Clone())
	}
	return out
}
