package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ugoscholars/scholardb/pkg/logging"
)

func TestContextFields(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRun(ctx, "run-123")
	ctx = logging.WithSheet(ctx, "C2")
	ctx = logging.WithStore(ctx, "students.xlsx")
	ctx = logging.WithOperation(ctx, "consolidate")
	ctx = logging.WithStudent(ctx, 42)
	ctx = logging.WithError(ctx, errors.New("boom"))

	logging.FromContext(ctx).Info().Msg("processing")

	assert.Equal(t, "run-123", logging.RunID(ctx))
	tl.AssertContains(t, `"run_id":"run-123"`)
	tl.AssertContains(t, `"sheet":"C2"`)
	tl.AssertContains(t, `"store":"students.xlsx"`)
	tl.AssertContains(t, `"operation":"consolidate"`)
	tl.AssertContains(t, `"student_id":42`)
	tl.AssertContains(t, `"error":"boom"`)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is tolerated
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Empty(t, logging.RunID(context.Background()))
}

func TestWithFields(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithFields(ctx, map[string]any{"updated": 4, "dry_run": true})

	logging.Ctx(ctx).Info().Msg("done")

	tl.AssertContains(t, `"updated":4`)
	tl.AssertContains(t, `"dry_run":true`)
	assert.Equal(t, ctx, logging.WithError(ctx, nil))
}
