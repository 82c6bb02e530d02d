package shared

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a logger on stderr at the given level, as text or
// as JSON lines
func SetupLogger(level string, jsonOutput bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := log.Options{
		Level:           lvl,
		ReportTimestamp: true,
	}
	if jsonOutput {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(os.Stderr, opts), nil
}
