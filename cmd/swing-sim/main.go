package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/swinglab/internal/swingsim"
)

// Default configuration constants.
const (
	defaultNumSwings   = 300
	defaultFrames      = 30
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultSeed        = 42
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numSwings  = flag.Int("swings", defaultNumSwings, "Number of swings to generate and submit")
		frames     = flag.Int("frames", defaultFrames, "Observations per swing")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		seed       = flag.Int64("seed", defaultSeed, "Noise seed")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait       = flag.Duration("wait", swingsim.DefaultWaitTimeout, "Upper bound on waiting for results")
		outputFile = flag.String("output", "", "Write the generated swings to this JSON file")
		logFile    = flag.String("log", "", "Log file (default: swing_sim_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		swingsim.ShowHelp()
		return
	}

	closer, err := swingsim.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &swingsim.Config{
		BaseURL:      *baseURL,
		NumSwings:    *numSwings,
		Frames:       *frames,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: swingsim.DefaultPollInterval,
		WaitTimeout:  *wait,
		Seed:         *seed,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	if err := swingsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		_ = closer.Close()
		os.Exit(1)
	}
}
