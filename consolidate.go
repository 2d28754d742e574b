package scholardb

import (
	"context"
	"slices"

	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/provenance"
	"github.com/ugoscholars/scholardb/pkg/reconciler"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// snapshot is the store as read at the start of a run. Sheets that failed
// to read are kept as errors so the run skips them instead of aborting.
type snapshot struct {
	tables records.Workbook
	failed map[string]error
}

func (s *snapshot) Read(ctx context.Context, sheet string) (*records.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.failed[sheet]; ok {
		return nil, err
	}
	t := s.tables.Get(sheet)
	if t == nil {
		return nil, errors.NewSheetMissingError(sheet, "snapshot")
	}
	return t, nil
}

// unreadable lists the sheets a rewrite of the store would lose, sorted.
func (s *snapshot) unreadable() []string {
	names := make([]string, 0, len(s.failed))
	for name := range s.failed {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Consolidate reads the whole store, merges the source sheets into the master
// table and, unless dry-run is set, backs the store up and writes it back.
func (c *client) Consolidate(ctx context.Context, opts ...RunOption) (*reconciler.Result, error) {
	ro := newRunOptions(opts...)

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx = logging.WithOperation(logging.WithStore(ctx, c.store.Name()), "consolidate")
	logger := logging.Ctx(ctx)

	snap, err := c.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	r, err := reconciler.New(c.reconcilerOptions(ro)...)
	if err != nil {
		return nil, err
	}

	result, err := r.ConsolidateFrom(ctx, snap)
	if err != nil {
		return nil, err
	}

	if !ro.dryRun {
		updated := slices.Clone(snap.tables).Put(result.Master)
		if _, err := c.persist(ctx, snap, updated, result.Metadata.RunAt); err != nil {
			return result, err
		}
		c.hooks.trigger(result.Changeset)

		if c.options.provenanceFile != "" {
			if err := provenance.Save(c.options.provenanceFile, result.Provenance); err != nil {
				logger.Warn().Err(err).Str("file", c.options.provenanceFile).Msg("Failed to save provenance")
			}
		}
	}

	c.metrics.Observe(result)
	if c.options.metricsFile != "" {
		if err := c.metrics.WriteTextfile(c.options.metricsFile); err != nil {
			logger.Warn().Err(err).Str("file", c.options.metricsFile).Msg("Failed to write metrics")
		}
	}

	logger.Info().Msg(result.Summary())
	return result, nil
}

func (c *client) reconcilerOptions(ro runOptions) []reconciler.Option {
	opts := []reconciler.Option{
		reconciler.WithSheetOrder(c.options.sheets...),
		reconciler.WithClock(c.options.clock),
		reconciler.WithDryRun(ro.dryRun),
		reconciler.WithProvenance(c.options.provenanceFile != ""),
	}
	if c.options.shapes != nil {
		opts = append(opts, reconciler.WithShapes(c.options.shapes))
	}
	if c.options.identity != nil {
		opts = append(opts, reconciler.WithIdentity(c.options.identity))
	}
	return opts
}
