package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugoscholars/scholardb/internal/archive/core"
	"github.com/ugoscholars/scholardb/internal/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	none, err := Open(ctx, config.Archive{Driver: config.ArchiveNone})
	require.NoError(t, err)
	assert.Nil(t, none)

	mem, err := Open(ctx, config.Archive{Driver: config.ArchiveMemory})
	require.NoError(t, err)
	assert.Equal(t, core.DriverMemory, mem.Driver())

	fsStore, err := Open(ctx, config.Archive{Driver: config.ArchiveFS, Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, core.DriverFilesystem, fsStore.Driver())

	s3Store, err := Open(ctx, config.Archive{Driver: config.ArchiveS3, S3: config.S3{Bucket: "b", Endpoint: "http://localhost:9000", PathStyle: true}})
	require.NoError(t, err)
	assert.Equal(t, core.DriverS3, s3Store.Driver())
}

func TestOpenInvalid(t *testing.T) {
	_, err := Open(context.Background(), config.Archive{Driver: config.ArchiveFS})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.Archive{Driver: "ftp"})
	assert.Error(t, err)
}
