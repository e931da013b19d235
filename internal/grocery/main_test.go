package grocery

import (
	"os"
	"testing"

	"github.com/greenshelf/scorer/pkg/logger"
)

// TestMain initializes the global logger before any test runs
func TestMain(m *testing.M) {
	if logger.Log == nil {
		if err := logger.Init("error", ""); err != nil {
			panic(err)
		}
	}
	os.Exit(m.Run())
}
