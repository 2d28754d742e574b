// Package sqlstore keeps workbook tables in a SQL database. SQLite is served
// by the pure Go modernc driver and Postgres by pgx through database/sql.
// Each table is one row holding its header and cells as JSON.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/ugoscholars/scholardb/internal/store/core"
	"github.com/ugoscholars/scholardb/pkg/constants"
	serrors "github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

const defaultName = "scholardb"

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// dialect captures the differences between the two supported databases.
type dialect struct {
	driver   core.Driver
	sqlName  string
	numbered bool
}

var (
	sqliteDialect   = dialect{driver: core.DriverSQLite, sqlName: "sqlite"}
	postgresDialect = dialect{driver: core.DriverPostgres, sqlName: "pgx", numbered: true}
)

// bind rewrites ? placeholders to $n for Postgres.
func (d dialect) bind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const ddl = `CREATE TABLE IF NOT EXISTS workbook_sheets (
	name TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	payload TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS workbook_backups (
	name TEXT PRIMARY KEY,
	taken_at TEXT NOT NULL,
	payload TEXT NOT NULL
)`

// payload is the stored form of one table.
type payload struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Store is a workbook held in SQL tables.
type Store struct {
	db      *sql.DB
	dialect dialect
	name    string
	mu      sync.Mutex
}

// OpenSQLite opens the database file at path. The file must already exist.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.NewStorageNotFoundError(string(core.DriverSQLite), path, err)
		}
		return nil, serrors.WrapIO("open", path, err)
	}
	base := filepath.Base(path)
	return open(ctx, sqliteDialect, path, strings.TrimSuffix(base, filepath.Ext(base)))
}

// CreateSQLite creates (or opens) the database file at path.
func CreateSQLite(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, serrors.WrapIO("create", path, err)
	}
	base := filepath.Base(path)
	return open(ctx, sqliteDialect, path, strings.TrimSuffix(base, filepath.Ext(base)))
}

// OpenPostgres connects to dsn. Connection failures yield *errors.StorageNotFoundError.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	return open(ctx, postgresDialect, dsn, databaseName(dsn))
}

func open(ctx context.Context, d dialect, dsn, name string) (*Store, error) {
	openMu.Lock()
	db, err := sqlOpen(d.sqlName, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, serrors.NewStorageNotFoundError(string(d.driver), name, err)
	}
	for _, stmt := range strings.Split(ddl, ";") {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure workbook tables: %w", err)
		}
	}
	return &Store{db: db, dialect: d, name: name}, nil
}

func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return defaultName
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultName
}

func (s *Store) Driver() core.Driver { return s.dialect.driver }

// Name is the database file stem for SQLite and the database name for Postgres.
func (s *Store) Name() string { return s.name }

// DB exposes the underlying sql.DB for tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Sheets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM workbook_sheets ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("select sheets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan sheet: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) Read(ctx context.Context, sheet string) (*records.Table, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.dialect.bind(`SELECT payload FROM workbook_sheets WHERE name = ?`), sheet).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, serrors.NewSheetMissingError(sheet, s.name)
	}
	if err != nil {
		return nil, fmt.Errorf("select sheet %s: %w", sheet, err)
	}
	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, serrors.WrapParse("json", sheet, err)
	}
	return records.FromValues(sheet, append([][]string{p.Columns}, p.Rows...)), nil
}

// Backup stores a copy of every table in workbook_backups under BackupName.
func (s *Store) Backup(ctx context.Context, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.Sheets(ctx)
	if err != nil {
		return "", err
	}
	snapshot := make(map[string]payload, len(names))
	for _, name := range names {
		t, err := s.Read(ctx, name)
		if err != nil {
			return "", err
		}
		snapshot[name] = encode(t)
	}
	data, err := json.Marshal(struct {
		Order  []string           `json:"order"`
		Tables map[string]payload `json:"tables"`
	}{names, snapshot})
	if err != nil {
		return "", err
	}

	name := core.BackupName(s.name, at)
	query := s.dialect.bind(`INSERT INTO workbook_backups(name, taken_at, payload) VALUES(?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET taken_at = excluded.taken_at, payload = excluded.payload`)
	if _, err := s.db.ExecContext(ctx, query, name, at.UTC().Format(time.RFC3339), string(data)); err != nil {
		return "", fmt.Errorf("insert backup %s: %w", name, err)
	}
	return name, nil
}

// Backups lists stored backup names, oldest first.
func (s *Store) Backups(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM workbook_backups ORDER BY taken_at, name`)
	if err != nil {
		return nil, fmt.Errorf("select backups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// WriteAll replaces every table inside one transaction.
func (s *Store) WriteAll(ctx context.Context, tables records.Workbook) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fail := func(err error) error { return serrors.NewWriteFailureError(s.name, "", err) }

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM workbook_sheets`); err != nil {
		return fail(fmt.Errorf("clear sheets: %w", err))
	}
	insert := s.dialect.bind(`INSERT INTO workbook_sheets(name, position, payload) VALUES(?, ?, ?)`)
	for i, t := range tables {
		data, err := json.Marshal(encode(t))
		if err != nil {
			return fail(err)
		}
		if _, err := tx.ExecContext(ctx, insert, t.Name, i, string(data)); err != nil {
			return fail(fmt.Errorf("insert %s: %w", t.Name, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fail(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func encode(t *records.Table) payload {
	values := t.Values()
	return payload{Columns: values[0], Rows: values[1:]}
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
