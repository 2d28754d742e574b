// Package archive selects the snapshot archive backend from configuration.
package archive

import (
	"context"
	"fmt"

	"github.com/ugoscholars/scholardb/internal/archive/core"
	"github.com/ugoscholars/scholardb/internal/archive/fs"
	"github.com/ugoscholars/scholardb/internal/archive/memory"
	"github.com/ugoscholars/scholardb/internal/archive/s3"
	"github.com/ugoscholars/scholardb/internal/config"
)

// Store is the archive contract.
type Store = core.Store

// Info describes an archived snapshot.
type Info = core.Info

// PutOptions are optional Put parameters.
type PutOptions = core.PutOptions

// ContentTypeXLSX is the MIME type of archived workbook snapshots.
const ContentTypeXLSX = core.ContentTypeXLSX

// Open returns the archive described by cfg, or nil when archiving is disabled.
func Open(ctx context.Context, cfg config.Archive) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case "", config.ArchiveNone:
		return nil, nil
	case config.ArchiveFS:
		return fs.New(cfg.Root)
	case config.ArchiveS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.Root,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	case config.ArchiveMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", cfg.Driver)
	}
}
