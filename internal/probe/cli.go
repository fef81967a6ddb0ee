package probe

import (
	"fmt"
	"os"

	"github.com/okian/litterpredict/pkg/logger"
)

// SetupLogging initializes the global logger, teeing to logFile when set.
func SetupLogging(logFile string, verbose bool) error {
	var opts []logger.Option
	if logFile != "" {
		opts = append(opts, logger.WithFile(logFile))
	}
	if err := logger.Init(opts...); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return err
		}
	}
	return nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Litter Prediction Probe
=======================

Checks a running litter prediction service end to end: the root message,
the /data acknowledgement and both prediction routes for every category
and weekday.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -samples int
        Synthetic readings posted to /data (default 200)
  -seed int
        Seed for the synthetic batch (default 42)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Also write logs to this file
  -verbose
        Log every prediction
  -help
        Show this help message

Examples:
  go run ./cmd/probe
  go run ./cmd/probe -url http://localhost:8080 -workers 4 -verbose
`)
}
