package reconciler_test

import (
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/ugoscholars/scholardb/pkg/logging"
)

func TestMain(m *testing.M) {
	logging.SetDefault(zerolog.Nop())
	goleak.VerifyTestMain(m)
}
