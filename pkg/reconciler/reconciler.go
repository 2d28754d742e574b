// Package reconciler consolidates heterogeneous source sheets into the
// canonical master table. Each run rebuilds an identity index from the
// current master, merges matched source records into their master rows and
// appends unmatched ones under fresh, monotonically assigned ids.
package reconciler

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/differ"
	"github.com/ugoscholars/scholardb/pkg/identity"
	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/provenance"
	"github.com/ugoscholars/scholardb/pkg/records"
	"github.com/ugoscholars/scholardb/pkg/schema"
)

// Reconciler is the main interface for consolidating student records.
type Reconciler interface {
	// Consolidate merges sources, in the given order, into a copy of master.
	// The inputs are not modified.
	Consolidate(ctx context.Context, master *records.Table, sources []*records.Table) (*Result, error)

	// ConsolidateFrom reads the master and the configured source sheets from
	// r and consolidates them. Sheets that cannot be read are skipped.
	ConsolidateFrom(ctx context.Context, r Reader) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	options *options
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{options: options}, nil
}

// run holds the state of one consolidation pass. It is discarded afterwards.
type run struct {
	id         string
	logger     *zerolog.Logger
	master     *records.Table
	index      *identity.Index
	nextID     int
	now        time.Time
	provenance provenance.Tracker
	result     *Result
}

// ConsolidateFrom reads from r and consolidates.
func (r *reconciler) ConsolidateFrom(ctx context.Context, reader Reader) (*Result, error) {
	c := newCollector(reader, r.options.order, logging.FromContext(ctx))

	master, err := c.master(ctx)
	if err != nil {
		return nil, err
	}

	sources, skipped, err := c.sources(ctx)
	if err != nil {
		return nil, err
	}

	result, err := r.Consolidate(ctx, master, sources)
	if err != nil {
		return nil, err
	}

	result.Skipped = append(skipped, result.Skipped...)
	slices.SortStableFunc(result.Skipped, func(a, b Skipped) int {
		return slices.Index(r.options.order, a.Sheet) - slices.Index(r.options.order, b.Sheet)
	})
	result.Metadata.Sources = r.options.order
	return result, nil
}

// Consolidate performs the run with a clean step-by-step flow.
func (r *reconciler) Consolidate(ctx context.Context, master *records.Table, sources []*records.Table) (*Result, error) {
	// Step 1: Copy the master and backfill ids if the column is missing
	rn := r.initialize(ctx, master)

	// Step 2: Build the identity index, last occurrence wins
	rn.index = identity.NewIndex(r.options.identity, rn.master.Rows)

	// Step 3: Continue numbering after the highest existing id
	rn.nextID = rn.master.MaxID() + 1

	rn.logger.Info().
		Int("master_rows", len(rn.master.Rows)).
		Int("indexed", rn.index.Len()).
		Int("next_id", rn.nextID).
		Msg("Loaded master table")

	baseline := rn.master.Clone()

	// Step 4: Merge every source sheet in order
	for _, src := range sources {
		r.consolidateSheet(rn, src)
	}

	// Step 5: Emit canonical columns
	rn.master.EnsureCanonical()

	// Step 6: Compute changes and totals
	return r.finish(rn, baseline), nil
}

// initialize sets up run state.
func (r *reconciler) initialize(ctx context.Context, master *records.Table) *run {
	id := uuid.NewString()
	logger := logging.FromContext(logging.WithRun(ctx, id))

	result := NewResult()
	result.RunID = id
	result.Metadata.Policy = r.options.policy.Type()
	result.Metadata.DryRun = r.options.dryRun

	var working *records.Table
	if master == nil {
		working = records.NewTable(constants.MasterSheet, records.Canonical...)
	} else {
		working = master.Clone()
	}
	if working.Name == "" {
		working.Name = constants.MasterSheet
	}
	if renamed := schema.CanonicalizeMaster(working); len(renamed) > 0 {
		logger.Info().
			Interface("columns", renamed).
			Msg("Cleaned master column names")
	}

	if !working.HasColumn(records.IDField) {
		records.NumberRows(working)
		result.Metadata.Backfilled = true
		logger.Warn().
			Int("rows", len(working.Rows)).
			Msg("Master table has no id column, assigned sequential ids")
	}

	now := r.options.clock()
	result.Metadata.RunAt = now

	return &run{
		id:         id,
		logger:     logger,
		master:     working,
		now:        now,
		provenance: provenance.NewTracker(r.options.tracking),
		result:     result,
	}
}

// consolidateSheet merges one source sheet into the run's master.
func (r *reconciler) consolidateSheet(rn *run, src *records.Table) {
	logger := rn.logger.With().Str("sheet", src.Name).Logger()

	mapping, err := r.options.shapes.Normalize(src.Name, src.Columns)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("reason", ReasonNoNameColumn).
			Msg("Skipping source sheet")
		rn.result.Skipped = append(rn.result.Skipped, Skipped{Sheet: src.Name, Reason: ReasonNoNameColumn, Err: err})
		return
	}
	if len(mapping.Unmapped) > 0 {
		logger.Debug().Strs("columns", mapping.Unmapped).Msg("Ignoring unmapped columns")
	}

	sheet := src.Clone()
	sheet.DropEmptyRows()
	stats := SheetStats{Sheet: src.Name, Shape: mapping.Shape, Rows: len(sheet.Rows)}

	for _, raw := range sheet.Rows {
		if mapping.Name(raw) == "" {
			stats.BlankName++
			continue
		}
		record := mapping.Record(raw)

		pos, found, err := rn.index.Resolve(record)
		if err != nil {
			// strategy rejected a record the name check accepted
			stats.BlankName++
			continue
		}

		if found {
			r.update(rn, pos, record)
			stats.Updated++
		} else {
			r.add(rn, record)
			stats.Added++
		}
	}

	logger.Info().
		Str("shape", stats.Shape).
		Int("rows", stats.Rows).
		Int("updated", stats.Updated).
		Int("added", stats.Added).
		Msg("Consolidated source sheet")

	rn.result.Sheets = append(rn.result.Sheets, stats)
	rn.result.Stats.Updated += stats.Updated
	rn.result.Stats.Added += stats.Added
}

// update merges record into the master row at pos.
func (r *reconciler) update(rn *run, pos int, record records.Row) {
	existing := rn.master.Rows[pos]
	merged, changes := r.options.policy.Merge(existing, record, rn.now)
	rn.master.Rows[pos] = merged

	id := existing[records.IDField]
	for _, ch := range changes {
		reason := provenance.ReasonFilled
		if ch.Field == records.SourceSheet {
			reason = provenance.ReasonUnion
		}
		rn.provenance.Track(provenance.ResourceTypeStudent, id, ch.Field, provenance.Provenance{
			Source:        ch.Source,
			Value:         ch.To,
			PreviousValue: ch.From,
			Timestamp:     rn.now,
			Reason:        reason,
		})
	}
}

// add appends record as a new master row with the next id.
func (r *reconciler) add(rn *run, record records.Row) {
	row := record.Clone()
	id := strconv.Itoa(rn.nextID)
	rn.nextID++

	row[records.IDField] = id
	row[records.LastUpdated] = rn.now.Format(constants.TimeFormatRecord)

	rn.master.Rows = append(rn.master.Rows, row)
	_ = rn.index.Add(row, len(rn.master.Rows)-1)

	for field, value := range row {
		if field == records.IDField || field == records.LastUpdated || records.Blank(value) {
			continue
		}
		rn.provenance.Track(provenance.ResourceTypeStudent, id, field, provenance.Provenance{
			Source:    record[records.SourceSheet],
			Value:     value,
			Timestamp: rn.now,
			Reason:    provenance.ReasonCreated,
		})
	}
}

// finish builds the final result.
func (r *reconciler) finish(rn *run, baseline *records.Table) *Result {
	result := rn.result
	result.Master = rn.master
	result.Changeset = differ.New(differ.WithIgnoredFields(records.LastUpdated)).Tables(baseline, rn.master)
	if m := rn.provenance.Map(); m != nil {
		result.Provenance = m
	}

	result.Stats.Total = len(rn.master.Rows)
	first := true
	for _, row := range rn.master.Rows {
		id, ok := row.ID()
		if !ok {
			continue
		}
		if first || id < result.Stats.MinID {
			result.Stats.MinID = id
		}
		if first || id > result.Stats.MaxID {
			result.Stats.MaxID = id
		}
		first = false
	}

	for _, sheet := range result.Sheets {
		result.Metadata.Sources = append(result.Metadata.Sources, sheet.Sheet)
	}

	result.Finalize()

	rn.logger.Info().
		Int("updated", result.Stats.Updated).
		Int("added", result.Stats.Added).
		Int("total", result.Stats.Total).
		Int("skipped", len(result.Skipped)).
		Dur("duration", result.Metadata.Duration).
		Msg("Consolidation complete")

	return result
}
