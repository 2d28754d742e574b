package reconciler

import (
	"slices"
	"time"

	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/identity"
	"github.com/ugoscholars/scholardb/pkg/merge"
	"github.com/ugoscholars/scholardb/pkg/schema"
)

// options configures a reconciler.
type options struct {
	order    []string
	shapes   *schema.Shapes
	identity identity.Strategy
	policy   merge.Policy
	tracking bool
	dryRun   bool
	clock    func() time.Time
}

func defaultOptions() *options {
	return &options{
		order:    slices.Clone(constants.DefaultSheetOrder),
		shapes:   schema.Default(),
		identity: identity.ExactName,
		policy:   merge.FirstWriterWins,
		tracking: true,
		clock:    time.Now,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithSheetOrder sets which source sheets are read, and in what order.
func WithSheetOrder(sheets ...string) Option {
	return func(o *options) error {
		if len(sheets) == 0 {
			return &errors.ValidationError{
				Field:   "sheets",
				Message: "at least one source sheet is required",
			}
		}
		if slices.Contains(sheets, constants.MasterSheet) {
			return &errors.ValidationError{
				Field:   "sheets",
				Value:   constants.MasterSheet,
				Message: "the master table cannot be its own source",
			}
		}
		o.order = slices.Clone(sheets)
		return nil
	}
}

// WithShapes sets the normalization table.
func WithShapes(shapes *schema.Shapes) Option {
	return func(o *options) error {
		if shapes == nil {
			return &errors.ValidationError{
				Field:   "shapes",
				Message: "cannot be nil",
			}
		}
		o.shapes = shapes
		return nil
	}
}

// WithIdentity sets the identity matching strategy.
func WithIdentity(strategy identity.Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "identity",
				Message: "cannot be nil",
			}
		}
		o.identity = strategy
		return nil
	}
}

// WithPolicy sets the field merge policy.
func WithPolicy(policy merge.Policy) Option {
	return func(o *options) error {
		if policy == nil {
			return &errors.ValidationError{
				Field:   "policy",
				Message: "cannot be nil",
			}
		}
		o.policy = policy
		return nil
	}
}

// WithProvenance enables field-level tracking.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}

// WithDryRun marks results as previews.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithClock overrides the run timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		o.clock = clock
		return nil
	}
}
