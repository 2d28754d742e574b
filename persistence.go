package scholardb

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ugoscholars/scholardb/internal/archive"
	"github.com/ugoscholars/scholardb/internal/store"
	"github.com/ugoscholars/scholardb/internal/store/xlsx"
	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/logging"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// persist backs the store up, archives the snapshot when an archive is
// configured, then replaces every table with wb. Nothing is written unless the
// backup succeeded, and nothing at all while a sheet of the snapshot is
// unreadable, since the rewrite would drop it.
func (c *client) persist(ctx context.Context, snap *snapshot, wb records.Workbook, at time.Time) (string, error) {
	logger := logging.Ctx(logging.WithStore(ctx, c.store.Name()))

	if bad := snap.unreadable(); len(bad) > 0 {
		return "", errors.NewWriteFailureError(c.store.Name(), "",
			fmt.Errorf("unreadable sheets would be lost: %s", strings.Join(bad, ", ")))
	}

	backup, err := c.store.Backup(ctx, at)
	if err != nil {
		return "", errors.NewWriteFailureError(c.store.Name(), "", errors.WrapIO("backup", c.store.Name(), err))
	}
	logger.Info().Str("backup", backup).Msg("Backed up store")

	if c.archive != nil {
		if err := c.upload(ctx, snap.tables, at); err != nil {
			return backup, errors.NewWriteFailureError(c.store.Name(), backup, err)
		}
	}

	if err := c.store.WriteAll(ctx, wb); err != nil {
		var wf *errors.WriteFailureError
		if errors.As(err, &wf) {
			wf.Backup = backup
			return backup, wf
		}
		return backup, errors.NewWriteFailureError(c.store.Name(), backup, err)
	}

	logger.Info().
		Int("tables", len(wb)).
		Msg("Wrote store")
	return backup, nil
}

// upload encodes the pre-write snapshot as a workbook and puts it in the archive.
func (c *client) upload(ctx context.Context, snapshot records.Workbook, at time.Time) error {
	data, err := xlsx.Encode(snapshot)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ArchiveUploadTimeout)
	defer cancel()

	key := store.BackupName(c.store.Name(), at) + ".xlsx"
	info, err := c.archive.Put(ctx, key, bytes.NewReader(data), archive.PutOptions{
		ContentType: archive.ContentTypeXLSX,
		Metadata: map[string]string{
			"store":  c.store.Name(),
			"driver": string(c.store.Driver()),
		},
	})
	if err != nil {
		return errors.WrapResource("upload", "archive", key, err)
	}

	logging.Ctx(ctx).Info().
		Str("key", info.Key).
		Int64("size", info.Size).
		Str("archive", string(c.archive.Driver())).
		Msg("Archived backup")
	return nil
}
