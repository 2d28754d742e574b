package reconciler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Reader reads one named sheet. Stores implement it.
type Reader interface {
	Read(ctx context.Context, sheet string) (*records.Table, error)
}

// collector reads the master table and the source sheets from a Reader.
type collector struct {
	reader Reader
	order  []string
	logger *zerolog.Logger
}

func newCollector(reader Reader, order []string, logger *zerolog.Logger) *collector {
	return &collector{reader: reader, order: order, logger: logger}
}

// master reads the master table. A missing master starts an empty one.
func (c *collector) master(ctx context.Context) (*records.Table, error) {
	t, err := c.reader.Read(ctx, constants.MasterSheet)
	switch {
	case errors.IsSheetMissing(err):
		c.logger.Warn().
			Str("sheet", constants.MasterSheet).
			Msg("Master table not found, starting a new one")
		return records.NewTable(constants.MasterSheet, records.Canonical...), nil
	case err != nil:
		return nil, errors.WrapResource("read", "sheet", constants.MasterSheet, err)
	}
	return t, nil
}

// sources reads every configured sheet. Sheets that cannot be read are
// returned as skipped, never as an error, unless ctx is done.
func (c *collector) sources(ctx context.Context) ([]*records.Table, []Skipped, error) {
	tables := make([]*records.Table, 0, len(c.order))
	var skipped []Skipped

	for _, sheet := range c.order {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		t, err := c.reader.Read(ctx, sheet)
		if err != nil {
			reason := ReasonUnreadable
			if errors.IsSheetMissing(err) {
				reason = ReasonMissing
			}
			c.logger.Warn().
				Err(err).
				Str("sheet", sheet).
				Str("reason", reason).
				Msg("Skipping source sheet")
			skipped = append(skipped, Skipped{Sheet: sheet, Reason: reason, Err: err})
			continue
		}

		c.logger.Debug().
			Str("sheet", sheet).
			Int("rows", len(t.Rows)).
			Msg("Read source sheet")
		tables = append(tables, t)
	}

	return tables, skipped, nil
}
