// Package csvdir implements the workbook store as a directory of CSV files,
// one <sheet>.csv per table.
package csvdir

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ugoscholars/scholardb/internal/store/core"
	"github.com/ugoscholars/scholardb/pkg/constants"
	serrors "github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Extension is the file suffix of every table.
const Extension = ".csv"

// Store is a directory of CSV tables.
type Store struct {
	dir string
}

// Open opens the directory at dir. A missing directory yields *errors.StorageNotFoundError.
func Open(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.NewStorageNotFoundError(string(core.DriverCSV), dir, err)
		}
		return nil, serrors.WrapIO("open", dir, err)
	}
	if !info.IsDir() {
		return nil, serrors.NewStorageNotFoundError(string(core.DriverCSV), dir, errors.New("not a directory"))
	}
	return &Store{dir: filepath.Clean(dir)}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverCSV }

// Name is the directory base name.
func (s *Store) Name() string { return filepath.Base(s.dir) }

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Sheets lists the tables in the directory. The master table comes first,
// the rest are sorted by name.
func (s *Store) Sheets(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, serrors.WrapIO("read", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Extension))
	}
	sort.SliceStable(names, func(i, j int) bool {
		if (names[i] == constants.MasterSheet) != (names[j] == constants.MasterSheet) {
			return names[i] == constants.MasterSheet
		}
		return names[i] < names[j]
	})
	return names, nil
}

func (s *Store) Read(ctx context.Context, sheet string) (*records.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, sheet+Extension)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.NewSheetMissingError(sheet, s.dir)
		}
		return nil, serrors.WrapIO("read", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	values, err := r.ReadAll()
	if err != nil {
		return nil, serrors.WrapParse("csv", path, err)
	}
	return records.FromValues(sheet, values), nil
}

// Backup copies the directory to a sibling named <name>_backup_<ts>.
func (s *Store) Backup(ctx context.Context, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(filepath.Dir(s.dir), core.BackupName(s.Name(), at))
	if err := copyDir(s.dir, target); err != nil {
		return "", serrors.WrapIO("backup", target, err)
	}
	return target, nil
}

// WriteAll writes tables into a fresh sibling directory and swaps it with
// the current one. The previous directory is restored if the swap fails.
func (s *Store) WriteAll(ctx context.Context, tables records.Workbook) error {
	if err := ctx.Err(); err != nil {
		return serrors.NewWriteFailureError(s.dir, "", err)
	}
	parent := filepath.Dir(s.dir)
	staging, err := os.MkdirTemp(parent, "."+s.Name()+".tmp-*")
	if err != nil {
		return serrors.NewWriteFailureError(s.dir, "", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	for _, t := range tables {
		if err := writeTable(filepath.Join(staging, t.Name+Extension), t); err != nil {
			return serrors.NewWriteFailureError(s.dir, "", err)
		}
	}
	if err := os.Chmod(staging, constants.DirPermissions); err != nil {
		return serrors.NewWriteFailureError(s.dir, "", err)
	}

	old := staging + ".old"
	if err := os.Rename(s.dir, old); err != nil {
		return serrors.NewWriteFailureError(s.dir, "", err)
	}
	if err := os.Rename(staging, s.dir); err != nil {
		if rerr := os.Rename(old, s.dir); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return serrors.NewWriteFailureError(s.dir, "", err)
	}
	_ = os.RemoveAll(old)
	return nil
}

func (s *Store) Close() error { return nil }

// Create writes tables into a new directory at dir and opens it.
func Create(dir string, tables records.Workbook) (*Store, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, serrors.WrapIO("create", dir, err)
	}
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+Extension)
		if err := writeTable(path, t); err != nil {
			return nil, serrors.WrapIO("create", path, err)
		}
	}
	return Open(dir)
}

func writeTable(path string, t *records.Table) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(t.Values()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(dst, constants.DirPermissions); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
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
