// Package scholardb consolidates scholarship student records kept across
// several differently-shaped sheets into one canonical master table.
//
// A Client wraps a workbook store (xlsx file, CSV directory, SQLite or
// Postgres) and runs the consolidation pipeline against it:
//   - Reads a full snapshot of the store
//   - Normalizes each source sheet and resolves students by name
//   - Fills blank master fields, first source in order wins
//   - Backs the store up, optionally archives the backup, then rewrites it
//
// Example usage:
//
//	client, err := scholardb.New(ctx,
//	    scholardb.WithStoreConfig(config.Store{Path: "UGO Scholars.xlsx"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.OnStudentAdded(func(row records.Row) {
//	    log.Printf("new student: %s", row[records.FullName])
//	})
//
//	result, err := client.Consolidate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package scholardb

import (
	"context"
	"sync"
	"time"

	"github.com/ugoscholars/scholardb/internal/archive"
	"github.com/ugoscholars/scholardb/internal/metrics"
	"github.com/ugoscholars/scholardb/internal/store"
	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/records"
	"github.com/ugoscholars/scholardb/pkg/reconciler"
	"github.com/ugoscholars/scholardb/pkg/studentid"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client runs maintenance operations against one workbook store.
type Client interface {
	// Consolidate merges every configured source sheet into the master table
	// and persists the result unless dry-run is requested.
	Consolidate(ctx context.Context, opts ...RunOption) (*reconciler.Result, error)

	// AssignStudentIDs generates UGO_<cohort>_<seq> identifiers on the master table.
	AssignStudentIDs(ctx context.Context, opts studentid.Options, runOpts ...RunOption) (*studentid.Report, error)

	// BackfillIDs numbers master rows 1..N in the id column.
	BackfillIDs(ctx context.Context, force bool, runOpts ...RunOption) (int, error)

	// Hooks provides access to event callback registration
	Hooks

	// Store returns the underlying workbook store.
	Store() store.Store

	// Close releases the store.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	// store is the workbook being maintained
	store   store.Store
	archive archive.Store

	// metrics accumulate across runs of this client
	metrics *metrics.Recorder

	// one run at a time per client
	mu    sync.Mutex
	hooks *hooks
}

// New creates a new Client instance with the given options.
func New(ctx context.Context, opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{options: o, hooks: newHooks(), store: o.store, archive: o.archive}

	if c.store == nil {
		openCtx, cancel := context.WithTimeout(ctx, o.openTimeout)
		defer cancel()
		if c.store, err = store.Open(openCtx, o.storeConfig); err != nil {
			return nil, err
		}
	}

	if c.archive == nil && o.archiveConfig.Enabled() {
		if c.archive, err = archive.Open(ctx, o.archiveConfig); err != nil {
			_ = c.store.Close()
			return nil, errors.WrapResource("open", "archive", o.archiveConfig.Driver, err)
		}
	}

	c.metrics = o.recorder
	if c.metrics == nil {
		c.metrics = metrics.New()
	}

	logging.Ctx(ctx).Debug().
		Str("store", c.store.Name()).
		Str("driver", string(c.store.Driver())).
		Bool("archive", c.archive != nil).
		Msg("Client ready")

	return c, nil
}

// Store returns the underlying workbook store.
func (c *client) Store() store.Store { return c.store }

// Close releases the store.
func (c *client) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

func (c *client) now() time.Time { return c.options.clock() }

// readSnapshot reads every sheet of the store. Per-sheet failures are kept
// in the snapshot and only listing the store fails the call.
func (c *client) readSnapshot(ctx context.Context) (*snapshot, error) {
	wb, failed, err := store.ReadEach(ctx, c.store)
	if err != nil {
		return nil, errors.WrapResource("read", "store", c.store.Name(), err)
	}
	for sheet, err := range failed {
		logging.Ctx(ctx).Debug().Err(err).Str("sheet", sheet).Msg("Sheet could not be read")
	}
	return &snapshot{tables: wb, failed: failed}, nil
}

// readMaster reads the store, failing when the master table is absent or
// unreadable.
func (c *client) readMaster(ctx context.Context) (*snapshot, *records.Table, error) {
	snap, err := c.readSnapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err, ok := snap.failed[constants.MasterSheet]; ok {
		return nil, nil, errors.WrapResource("read", "sheet", constants.MasterSheet, err)
	}
	master := snap.tables.Master()
	if master == nil {
		return nil, nil, errors.NewSheetMissingError(constants.MasterSheet, c.store.Name())
	}
	return snap, master, nil
}
