package swingsim

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/swinglab/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging logs to both the console and a file. If logFile is empty a
// timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "swing_sim_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the swing simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Swinglab Swing Simulator
========================

Generates synthetic golf swings, submits them to the analysis service and
checks that every swing is classified as its profile expects.

Usage:
  go run ./cmd/swing-sim [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -swings int
        Number of swings to generate and submit (default 300)
  -frames int
        Observations per swing (default 30)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -seed int
        Noise seed (default 42)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        Upper bound on waiting for results (default 2m)
  -output string
        Write the generated swings to this JSON file
  -log string
        Log file (default: swing_sim_TIMESTAMP.log)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  go run ./cmd/swing-sim -swings 3000 -workers 16
  go run ./cmd/swing-sim -url http://localhost:8080 -output swings.json
`)
}
