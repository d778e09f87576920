package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/steadihand/steadihand/internal/testsession"
)

// Default configuration constants.
const (
	defaultCalibration = 3.0
	defaultTest        = 30.0
	defaultRate        = 30.0
	defaultAmplitude   = 0.01
	defaultFrequency   = 5.0
	defaultDrift       = 0.001
	defaultNoise       = 0.002
	defaultDrop        = 0.02
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		calibration = flag.Float64("calibration", defaultCalibration, "Calibration phase duration in seconds")
		test        = flag.Float64("test", defaultTest, "Test phase duration in seconds")
		rate        = flag.Float64("rate", defaultRate, "Capture frame rate in frames per second")
		amplitude   = flag.Float64("amplitude", defaultAmplitude, "Tremor sinusoid amplitude in viewport fractions")
		frequency   = flag.Float64("frequency", defaultFrequency, "Tremor sinusoid frequency in Hz")
		drift       = flag.Float64("drift", defaultDrift, "Linear drift in viewport fractions per second")
		noise       = flag.Float64("noise", defaultNoise, "Uniform jitter amplitude")
		drop        = flag.Float64("drop", defaultDrop, "Probability that a finger is missing from a frame")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for generated frames (default: generated_frames_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testsession.ShowHelp()
		return
	}

	// Setup logging
	if err := testsession.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testsession.Config{
		BaseURL:            *baseURL,
		Fingers:            []string{"THUMB", "INDEX", "MIDDLE"},
		CalibrationSeconds: *calibration,
		TestSeconds:        *test,
		SampleRate:         *rate,
		TremorAmplitude:    *amplitude,
		TremorFrequency:    *frequency,
		DriftRate:          *drift,
		NoiseLevel:         *noise,
		DropProbability:    *drop,
		Workers:            *workers,
		Timeout:            *timeout,
		OutputFile:         *outputFile,
		LogFile:            *logFile,
		Verbose:            *verbose,
	}

	// Run the test
	if err := testsession.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
