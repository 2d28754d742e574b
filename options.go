package scholardb

import (
	"time"

	"github.com/ugoscholars/scholardb/internal/archive"
	"github.com/ugoscholars/scholardb/internal/config"
	"github.com/ugoscholars/scholardb/internal/metrics"
	"github.com/ugoscholars/scholardb/internal/store"
	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/identity"
	"github.com/ugoscholars/scholardb/pkg/schema"
)

// options holds the client configuration.
type options struct {
	storeConfig   config.Store
	store         store.Store
	archiveConfig config.Archive
	archive       archive.Store

	sheets         []string
	shapes         *schema.Shapes
	shapesFile     string
	identity       identity.Strategy
	provenanceFile string
	metricsFile    string
	recorder       *metrics.Recorder

	clock       func() time.Time
	openTimeout time.Duration
}

func defaults() *options {
	return &options{
		sheets:      constants.DefaultSheetOrder,
		clock:       time.Now,
		openTimeout: constants.DefaultTimeout,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.shapes == nil && o.shapesFile != "" {
		shapes, err := schema.Load(o.shapesFile)
		if err != nil {
			return nil, err
		}
		o.shapes = shapes
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithStoreConfig selects and opens the store described by cfg.
func WithStoreConfig(cfg config.Store) Option {
	return func(o *options) error {
		o.storeConfig = cfg
		return nil
	}
}

// WithStore uses an already opened store. The client takes ownership of it.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		if s == nil {
			return &errors.ValidationError{Field: "store", Message: "cannot be nil"}
		}
		o.store = s
		return nil
	}
}

// WithArchiveConfig uploads every pre-write backup to the archive described by cfg.
func WithArchiveConfig(cfg config.Archive) Option {
	return func(o *options) error {
		o.archiveConfig = cfg
		return nil
	}
}

// WithArchive uploads every pre-write backup to a.
func WithArchive(a archive.Store) Option {
	return func(o *options) error {
		o.archive = a
		return nil
	}
}

// WithSheetOrder overrides the order in which source sheets are consolidated.
func WithSheetOrder(sheets ...string) Option {
	return func(o *options) error {
		if len(sheets) == 0 {
			return &errors.ValidationError{Field: "sheets", Message: "at least one source sheet is required"}
		}
		o.sheets = sheets
		return nil
	}
}

// WithShapes overrides the embedded sheet shape definitions.
func WithShapes(shapes *schema.Shapes) Option {
	return func(o *options) error {
		o.shapes = shapes
		return nil
	}
}

// WithShapesFile loads sheet shape definitions from a YAML file.
func WithShapesFile(path string) Option {
	return func(o *options) error {
		o.shapesFile = path
		return nil
	}
}

// WithIdentity overrides how students are matched across sheets.
func WithIdentity(strategy identity.Strategy) Option {
	return func(o *options) error {
		o.identity = strategy
		return nil
	}
}

// WithProvenanceFile records field provenance and saves it to path after each persisted run.
func WithProvenanceFile(path string) Option {
	return func(o *options) error {
		o.provenanceFile = path
		return nil
	}
}

// WithMetricsFile writes Prometheus metrics to path after each run.
func WithMetricsFile(path string) Option {
	return func(o *options) error {
		o.metricsFile = path
		return nil
	}
}

// WithMetrics records runs on r instead of a private recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) error {
		o.recorder = r
		return nil
	}
}

// WithClock sets the time source for Last_Updated and backup names.
func WithClock(clock func() time.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}

// FromConfig applies every setting in cfg.
func FromConfig(cfg *config.Config) Option {
	return func(o *options) error {
		o.storeConfig = cfg.Store
		o.archiveConfig = cfg.Archive
		if len(cfg.Sheets) > 0 {
			o.sheets = cfg.Sheets
		}
		o.shapesFile = cfg.ShapesFile
		o.metricsFile = cfg.MetricsFile
		o.provenanceFile = cfg.ProvenanceFile
		return nil
	}
}

// RunOption configures a single operation.
type RunOption func(*runOptions)

type runOptions struct {
	dryRun bool
}

func newRunOptions(opts ...RunOption) runOptions {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}

// WithDryRun computes the result without backing up or writing the store.
func WithDryRun(enabled bool) RunOption {
	return func(ro *runOptions) {
		ro.dryRun = enabled
	}
}
