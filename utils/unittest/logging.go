package unittest

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger returns a logger for tests. Silent by default; set ORBIT_TEST_LOGS
// to see output while debugging a test.
func Logger() zerolog.Logger {
	if os.Getenv("ORBIT_TEST_LOGS") != "" {
		return zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.DebugLevel)
	}
	return zerolog.New(io.Discard)
}
