// Package config holds the typed settings shared by the CLI and the storage
// factories. Values come from viper, so flags, SCHOLARDB_* environment
// variables, .env files and ~/.scholardb.yaml all feed the same keys.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
)

// Configuration keys.
const (
	KeyStoreDriver      = "store.driver"
	KeyStorePath        = "store.path"
	KeyStoreDSN         = "store.dsn"
	KeyArchiveDriver    = "archive.driver"
	KeyArchiveRoot      = "archive.root"
	KeyArchiveBucket    = "archive.s3.bucket"
	KeyArchiveRegion    = "archive.s3.region"
	KeyArchiveEndpoint  = "archive.s3.endpoint"
	KeyArchivePathStyle = "archive.s3.path_style"
	KeySheetsOrder      = "sheets.order"
	KeyShapesFile       = "shapes.file"
	KeyMetricsFile      = "metrics.file"
	KeyProvenanceFile   = "provenance.file"
)

// Store drivers.
const (
	DriverXLSX     = "xlsx"
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Archive drivers.
const (
	ArchiveNone   = "none"
	ArchiveFS     = "fs"
	ArchiveS3     = "s3"
	ArchiveMemory = "memory"
)

// Store selects and locates the workbook backend.
type Store struct {
	Driver string
	Path   string
	DSN    string
}

// S3 configures the S3 archive backend.
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Archive configures where backup snapshots are uploaded.
type Archive struct {
	Driver string
	Root   string
	S3     S3
}

// Config is the complete runtime configuration.
type Config struct {
	Store          Store
	Archive        Archive
	Sheets         []string
	ShapesFile     string
	MetricsFile    string
	ProvenanceFile string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyArchiveDriver, ArchiveNone)
	v.SetDefault(KeySheetsOrder, constants.DefaultSheetOrder)
	v.SetDefault(KeyArchiveRegion, "us-east-1")
}

// FromViper builds a Config from v and resolves the store driver.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Store: Store{
			Driver: v.GetString(KeyStoreDriver),
			Path:   v.GetString(KeyStorePath),
			DSN:    v.GetString(KeyStoreDSN),
		},
		Archive: Archive{
			Driver: v.GetString(KeyArchiveDriver),
			Root:   v.GetString(KeyArchiveRoot),
			S3: S3{
				Bucket:    v.GetString(KeyArchiveBucket),
				Region:    v.GetString(KeyArchiveRegion),
				Endpoint:  v.GetString(KeyArchiveEndpoint),
				PathStyle: v.GetBool(KeyArchivePathStyle),
			},
		},
		Sheets:         v.GetStringSlice(KeySheetsOrder),
		ShapesFile:     v.GetString(KeyShapesFile),
		MetricsFile:    v.GetString(KeyMetricsFile),
		ProvenanceFile: v.GetString(KeyProvenanceFile),
	}
	if len(cfg.Sheets) == 0 {
		cfg.Sheets = constants.DefaultSheetOrder
	}

	store, err := cfg.Store.Resolve()
	if err != nil {
		return nil, err
	}
	cfg.Store = store

	if err := cfg.Archive.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve fills in the driver when it was not set explicitly. The driver is
// inferred from the DSN scheme or the path: .xlsx files, directories (csv),
// .db/.sqlite files.
func (s Store) Resolve() (Store, error) {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))

	if s.Driver == "" {
		switch {
		case strings.HasPrefix(s.DSN, "postgres://"), strings.HasPrefix(s.DSN, "postgresql://"):
			s.Driver = DriverPostgres
		case s.Path == "":
			return s, &errors.ConfigError{Component: "store", Message: "no store path or DSN configured"}
		default:
			s.Driver = inferDriver(s.Path)
		}
	}

	switch s.Driver {
	case DriverXLSX, DriverCSV, DriverSQLite:
		if s.Path == "" && s.DSN == "" {
			return s, &errors.ConfigError{Component: "store", Message: s.Driver + " store requires a path"}
		}
	case DriverPostgres:
		if s.DSN == "" {
			return s, &errors.ConfigError{Component: "store", Message: "postgres store requires a DSN"}
		}
	case DriverMemory:
	default:
		return s, &errors.ConfigError{Component: "store", Message: "unknown driver " + s.Driver}
	}
	return s, nil
}

// Location describes the store for logs and error messages.
func (s Store) Location() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Driver == DriverPostgres {
		return "postgres"
	}
	return s.DSN
}

func inferDriver(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return DriverXLSX
	case ".db", ".sqlite", ".sqlite3":
		return DriverSQLite
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return DriverCSV
	}
	return DriverXLSX
}

// Validate checks the archive settings.
func (a Archive) Validate() error {
	switch a.Driver {
	case "", ArchiveNone, ArchiveMemory:
	case ArchiveFS:
		if a.Root == "" {
			return &errors.ConfigError{Component: "archive", Message: "fs archive requires archive.root"}
		}
	case ArchiveS3:
		if a.S3.Bucket == "" {
			return &errors.ConfigError{Component: "archive", Message: "s3 archive requires archive.s3.bucket"}
		}
	default:
		return &errors.ConfigError{Component: "archive", Message: "unknown driver " + a.Driver}
	}
	return nil
}

// Enabled reports whether snapshots should be archived.
func (a Archive) Enabled() bool {
	return a.Driver != "" && a.Driver != ArchiveNone
}
