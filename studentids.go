package scholardb

import (
	"context"
	"slices"

	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/studentid"
)

// AssignStudentIDs generates Student_IDs on the master table and persists the
// store unless dry-run is set or nothing changed.
func (c *client) AssignStudentIDs(ctx context.Context, opts studentid.Options, runOpts ...RunOption) (*studentid.Report, error) {
	ro := newRunOptions(runOpts...)

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx = logging.WithOperation(logging.WithStore(ctx, c.store.Name()), "student-ids")

	snap, master, err := c.readMaster(ctx)
	if err != nil {
		return nil, err
	}

	working := master.Clone()
	report, err := studentid.Assign(ctx, working, opts)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int("updated", report.Updated).
		Int("total", report.Total).
		Int("sequence", report.Sequence).
		Int("defaulted", len(report.Defaulted)).
		Bool("dry_run", ro.dryRun).
		Msg("Assigned student ids")

	if ro.dryRun || report.Updated == 0 {
		return report, nil
	}
	if _, err := c.persist(ctx, snap, slices.Clone(snap.tables).Put(working), c.now()); err != nil {
		return report, err
	}
	return report, nil
}
