package config_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugoscholars/scholardb/internal/config"
	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
)

func TestStoreResolve(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		store config.Store
		want  string
	}{
		{"xlsx by extension", config.Store{Path: "students.xlsx"}, config.DriverXLSX},
		{"sqlite by extension", config.Store{Path: "students.db"}, config.DriverSQLite},
		{"csv directory", config.Store{Path: dir}, config.DriverCSV},
		{"unknown extension", config.Store{Path: filepath.Join(dir, "students")}, config.DriverXLSX},
		{"postgres dsn", config.Store{DSN: "postgres://u@localhost/scholars"}, config.DriverPostgres},
		{"explicit driver", config.Store{Driver: " SQLite ", Path: "x.bin"}, config.DriverSQLite},
		{"memory", config.Store{Driver: "memory"}, config.DriverMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.store.Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Driver)
		})
	}
}

func TestStoreResolveErrors(t *testing.T) {
	for name, s := range map[string]config.Store{
		"nothing":       {},
		"unknown":       {Driver: "mongo", Path: "x"},
		"postgres path": {Driver: "postgres", Path: "x"},
		"xlsx no path":  {Driver: "xlsx"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Resolve()
			var ce *errors.ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set(config.KeyStorePath, "data/students.xlsx")
	v.Set(config.KeyArchiveDriver, config.ArchiveS3)
	v.Set(config.KeyArchiveBucket, "scholar-backups")
	v.Set(config.KeyArchivePathStyle, true)
	v.Set(config.KeyMetricsFile, "/var/lib/node_exporter/scholardb.prom")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, config.DriverXLSX, cfg.Store.Driver)
	assert.Equal(t, "data/students.xlsx", cfg.Store.Location())
	assert.Equal(t, constants.DefaultSheetOrder, cfg.Sheets)
	assert.True(t, cfg.Archive.Enabled())
	assert.Equal(t, "us-east-1", cfg.Archive.S3.Region)
	assert.True(t, cfg.Archive.S3.PathStyle)
	assert.Equal(t, "/var/lib/node_exporter/scholardb.prom", cfg.MetricsFile)
}

func TestFromViperSheetOrderOverride(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set(config.KeyStoreDriver, config.DriverMemory)
	v.Set(config.KeySheetsOrder, []string{"C2", "C1"})

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"C2", "C1"}, cfg.Sheets)
	assert.False(t, cfg.Archive.Enabled())
}

func TestArchiveValidate(t *testing.T) {
	assert.NoError(t, config.Archive{}.Validate())
	assert.NoError(t, config.Archive{Driver: config.ArchiveFS, Root: "/backups"}.Validate())
	assert.Error(t, config.Archive{Driver: config.ArchiveFS}.Validate())
	assert.Error(t, config.Archive{Driver: config.ArchiveS3}.Validate())
	assert.Error(t, config.Archive{Driver: "ftp"}.Validate())
}
