package testsession

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/steadihand/steadihand/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the session test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Steadihand Session Test Tool
============================

Runs a synthetic hand-stability assessment against a running service:
calibration frames, baseline freeze, test frames, completion and scoring.

Usage:
  go run cmd/test-session/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -calibration float
        Calibration phase duration in seconds (default 3)
  -test float
        Test phase duration in seconds (default 30)
  -rate float
        Capture frame rate in frames per second (default 30)
  -amplitude float
        Tremor sinusoid amplitude in viewport fractions (default 0.01)
  -frequency float
        Tremor sinusoid frequency in Hz (default 5)
  -drift float
        Linear drift in viewport fractions per second (default 0.001)
  -noise float
        Uniform jitter amplitude (default 0.002)
  -drop float
        Probability that a finger is missing from a frame (default 0.02)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated frames (default: generated_frames_TIMESTAMP.json)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/test-session/main.go

  # Simulate a severe tremor
  go run cmd/test-session/main.go -amplitude 0.04 -frequency 8

  # Short run against a local build
  go run cmd/test-session/main.go -calibration 1 -test 5 -url http://localhost:8080
`)
}
