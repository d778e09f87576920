package testsession

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/steadihand/steadihand/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes one complete synthetic assessment against a running service:
// create a session, stream calibration frames, freeze the baseline, stream
// test frames, complete the session and verify the scored result.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting steadihand session test",
		logger.String("baseURL", config.BaseURL),
		logger.Any("fingers", config.Fingers),
		logger.Float64("calibrationSeconds", config.CalibrationSeconds),
		logger.Float64("testSeconds", config.TestSeconds),
		logger.Float64("sampleRate", config.SampleRate),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create a session
	sessionID, err := createSession(config)
	if err != nil {
		return fmt.Errorf("session creation failed: %w", err)
	}
	logger.Get().Info(ctx, "session created", logger.String("sessionID", sessionID))

	// Step 3: Stream the calibration phase and freeze the baseline
	calibrationFrames := generateFrames(ctx, config, sessionID, "calibration", config.CalibrationSeconds, stats)
	if err := submitFrames(ctx, config, calibrationFrames, stats); err != nil {
		return fmt.Errorf("calibration submission failed: %w", err)
	}
	if err := waitForDrain(ctx, config); err != nil {
		return fmt.Errorf("calibration drain failed: %w", err)
	}
	baseline, err := freezeBaseline(config, sessionID)
	if err != nil {
		return fmt.Errorf("baseline freeze failed: %w", err)
	}
	logger.Get().Info(ctx, "baseline frozen", logger.Int("fingers", len(baseline.Baseline)))

	// Step 4: Stream the test phase
	testFrames := generateFrames(ctx, config, sessionID, "test", config.TestSeconds, stats)
	if err := submitFrames(ctx, config, testFrames, stats); err != nil {
		return fmt.Errorf("test submission failed: %w", err)
	}
	if err := waitForDrain(ctx, config); err != nil {
		return fmt.Errorf("test drain failed: %w", err)
	}

	// Step 5: Complete the session
	result, err := completeSession(config, sessionID)
	if err != nil {
		return fmt.Errorf("session completion failed: %w", err)
	}

	// Step 6: Verify the result
	if err := verifyResult(ctx, config, result); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Display the assessment report
	displayReport(result)

	// Step 8: Save frames to file
	allFrames := append(calibrationFrames, testFrames...)
	if err := saveFramesToFile(ctx, config, allFrames); err != nil {
		logger.Get().Warn(ctx, "failed to save frames to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveFramesToFile saves the generated frames to a JSON file.
func saveFramesToFile(ctx context.Context, config *Config, frames []Frame) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_frames_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write frames to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, frame := range frames {
		jsonData, err := marshalJSON(frame)
		if err != nil {
			return fmt.Errorf("failed to marshal frame %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}

		// Add comma except for last frame
		if i < len(frames)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "frames saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, framesPerSecond float64

	if stats.FramesSubmitted > 0 {
		successRate = float64(stats.FramesSuccessful) / float64(stats.FramesSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		framesPerSecond = float64(stats.FramesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("framesGenerated", stats.FramesGenerated),
		logger.Int("framesSubmitted", stats.FramesSubmitted),
		logger.Int("framesSuccessful", stats.FramesSuccessful),
		logger.Int("framesDuplicate", stats.FramesDuplicate),
		logger.Int("framesFailed", stats.FramesFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("framesPerSecond", framesPerSecond))
}
