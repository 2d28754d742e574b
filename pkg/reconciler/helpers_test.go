package reconciler_test

import (
	"context"
	"testing"
	"time"

	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/records"
)

var runAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

const runStamp = "2025-06-01 10:00:00"

func fixedClock() time.Time { return runAt }

// testContext carries a logger that captures entries for the test.
func testContext(t *testing.T) (context.Context, *logging.TestLogger) {
	t.Helper()
	tl := logging.NewTestLogger(t)
	return logging.WithLogger(context.Background(), tl.Logger), tl
}

// sheet builds a table from a header and positional rows.
func sheet(name string, header []string, rows ...[]string) *records.Table {
	return records.FromValues(name, append([][]string{header}, rows...))
}

// master builds a canonical master table from partial rows.
func master(rows ...records.Row) *records.Table {
	t := records.NewTable("Master_Database", records.Canonical...)
	t.Rows = rows
	return t
}

// fakeReader serves tables from memory.
type fakeReader struct {
	tables map[string]*records.Table
	fail   map[string]error
}

func (f *fakeReader) Read(_ context.Context, name string) (*records.Table, error) {
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	t, ok := f.tables[name]
	if !ok {
		return nil, errors.NewSheetMissingError(name, "fake")
	}
	return t.Clone(), nil
}
