package scholardb

import (
	"context"
	"slices"

	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// BackfillIDs drops fully-empty master rows and numbers the rest 1..N. It
// refuses a master that already has an id column unless force is set.
func (c *client) BackfillIDs(ctx context.Context, force bool, runOpts ...RunOption) (int, error) {
	ro := newRunOptions(runOpts...)

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx = logging.WithOperation(logging.WithStore(ctx, c.store.Name()), "backfill-ids")

	snap, master, err := c.readMaster(ctx)
	if err != nil {
		return 0, err
	}
	if master.HasColumn(records.IDField) && !force {
		return 0, &errors.ValidationError{
			Field:   records.IDField,
			Message: "master table already has an id column, use force to renumber",
		}
	}

	working := master.Clone()
	n := records.BackfillIDs(working)

	logging.Ctx(ctx).Info().
		Int("rows", n).
		Bool("forced", force).
		Bool("dry_run", ro.dryRun).
		Msg("Numbered master rows")

	if ro.dryRun {
		return n, nil
	}
	if _, err := c.persist(ctx, snap, slices.Clone(snap.tables).Put(working), c.now()); err != nil {
		return 0, err
	}
	return n, nil
}
