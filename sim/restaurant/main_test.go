package restaurant

import (
	"os"
	"testing"

	"github.com/drivethru-sim/drivethru-sim/sim/internal/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.RunQuiet(m))
}
