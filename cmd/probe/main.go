package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/litterpredict/internal/domain/dataset"
	"github.com/okian/litterpredict/internal/probe"
)

const (
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultProbeTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", probe.DefaultBaseURL, "Base URL of the service")
		samples = flag.Int("samples", probe.DefaultSamples, "Synthetic readings posted to /data")
		seed    = flag.Int64("seed", dataset.DefaultSeed, "Seed for the synthetic batch")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Log every prediction")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := probe.SetupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	cfg := &probe.Config{
		BaseURL: *baseURL,
		Samples: *samples,
		Seed:    *seed,
		Workers: *workers,
		Timeout: *timeout,
		Verbose: *verbose,
	}

	if _, err := probe.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
