// Package store opens workbook stores by configuration and re-exports the
// contract defined in core.
package store

import (
	"context"
	"fmt"

	"github.com/ugoscholars/scholardb/internal/config"
	"github.com/ugoscholars/scholardb/internal/store/core"
	"github.com/ugoscholars/scholardb/internal/store/csvdir"
	"github.com/ugoscholars/scholardb/internal/store/memory"
	"github.com/ugoscholars/scholardb/internal/store/sqlstore"
	"github.com/ugoscholars/scholardb/internal/store/xlsx"
	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Store is the workbook store contract.
type Store = core.Store

// Driver identifies a store backend.
type Driver = core.Driver

// Open resolves cfg and opens the matching backend. Stores that do not exist
// yield *errors.StorageNotFoundError.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	cfg, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().
		Str("driver", cfg.Driver).
		Str("location", cfg.Location()).
		Msg("Opening store")

	switch cfg.Driver {
	case config.DriverXLSX:
		return xlsx.Open(cfg.Path)
	case config.DriverCSV:
		return csvdir.Open(cfg.Path)
	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = cfg.DSN
		}
		return sqlstore.OpenSQLite(ctx, path)
	case config.DriverPostgres:
		return sqlstore.OpenPostgres(ctx, cfg.DSN)
	case config.DriverMemory:
		return memory.New(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown store driver %s", cfg.Driver)
	}
}

// ReadAll reads every table in the store, in store order.
func ReadAll(ctx context.Context, s Store) (records.Workbook, error) {
	names, err := s.Sheets(ctx)
	if err != nil {
		return nil, err
	}
	wb := make(records.Workbook, 0, len(names))
	for _, name := range names {
		t, err := s.Read(ctx, name)
		if err != nil {
			return nil, err
		}
		wb = append(wb, t)
	}
	return wb, nil
}

// ReadEach reads every table in the store, in store order. A table that
// cannot be read is left out of the workbook and its error is returned in
// failed, keyed by sheet. Listing the sheets and ctx are the only fatal errors.
func ReadEach(ctx context.Context, s Store) (wb records.Workbook, failed map[string]error, err error) {
	names, err := s.Sheets(ctx)
	if err != nil {
		return nil, nil, err
	}
	wb = make(records.Workbook, 0, len(names))
	for _, name := range names {
		t, err := s.Read(ctx, name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[name] = err
			continue
		}
		wb = append(wb, t)
	}
	return wb, failed, nil
}

// BackupName returns <name>_backup_YYYYmmdd_HHMMSS.
var BackupName = core.BackupName
