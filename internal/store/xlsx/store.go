// Package xlsx implements the workbook store on a single .xlsx file using excelize.
package xlsx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ugoscholars/scholardb/internal/store/core"
	"github.com/ugoscholars/scholardb/pkg/constants"
	serrors "github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Extension is appended to archived snapshots.
const Extension = ".xlsx"

// Store is an .xlsx workbook on disk. The file is opened once and reopened
// after every successful WriteAll.
type Store struct {
	path string
	mu   sync.Mutex
	file *excelize.File
}

// Open opens the workbook at path. A missing file yields *errors.StorageNotFoundError.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.NewStorageNotFoundError(string(core.DriverXLSX), path, err)
		}
		return nil, serrors.WrapIO("open", path, err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, serrors.WrapParse("xlsx", path, err)
	}
	return &Store{path: path, file: f}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverXLSX }

// Name is the workbook file name without its extension.
func (s *Store) Name() string {
	base := filepath.Base(s.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

func (s *Store) Sheets(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.GetSheetList(), nil
}

func (s *Store) Read(ctx context.Context, sheet string) (*records.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, err := s.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, serrors.NewSheetMissingError(sheet, s.path)
	}
	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, serrors.WrapParse("xlsx", s.path, err)
	}
	return records.FromValues(sheet, rows), nil
}

// Backup copies the workbook next to itself as <name>_backup_<ts>.xlsx.
func (s *Store) Backup(ctx context.Context, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	target := filepath.Join(filepath.Dir(s.path), core.BackupName(s.Name(), at)+filepath.Ext(s.path))
	if err := copyFile(s.path, target); err != nil {
		return "", serrors.WrapIO("backup", target, err)
	}
	return target, nil
}

// WriteAll encodes tables into a temporary workbook beside the original and
// renames it into place.
func (s *Store) WriteAll(ctx context.Context, tables records.Workbook) error {
	if err := ctx.Err(); err != nil {
		return serrors.NewWriteFailureError(s.path, "", err)
	}
	data, err := Encode(tables)
	if err != nil {
		return serrors.NewWriteFailureError(s.path, "", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path, data); err != nil {
		return serrors.NewWriteFailureError(s.path, "", err)
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return serrors.NewWriteFailureError(s.path, "", err)
	}
	_ = s.file.Close()
	s.file = f
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Encode renders tables as an .xlsx workbook, one sheet per table in order.
// Numeric ids are written as numbers, every other cell as text.
func Encode(tables records.Workbook) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := f.GetSheetName(0)
	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(first, t.Name); err != nil {
				return nil, fmt.Errorf("naming sheet %q: %w", t.Name, err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return nil, fmt.Errorf("creating sheet %q: %w", t.Name, err)
		}
		if err := writeSheet(f, t); err != nil {
			return nil, fmt.Errorf("writing sheet %q: %w", t.Name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, t *records.Table) error {
	sw, err := f.NewStreamWriter(t.Name)
	if err != nil {
		return err
	}
	for r, line := range t.Values() {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := make([]any, len(line))
		for c, v := range line {
			values[c] = cellValue(r, t.Columns[c], v)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func cellValue(row int, column, value string) any {
	if row > 0 && column == records.IDField {
		if id, ok := records.ParseID(value); ok {
			return id
		}
	}
	return value
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*"+Extension)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), constants.FilePermissions); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Create writes tables to a new workbook at path and opens it.
func Create(path string, tables records.Workbook) (*Store, error) {
	data, err := Encode(tables)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, serrors.WrapIO("create", path, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return nil, serrors.WrapIO("create", path, err)
	}
	return Open(path)
}
