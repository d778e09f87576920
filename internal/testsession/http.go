package testsession

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	var buf io.Reader
	if body != nil {
		jsonData, err := marshalJSON(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		buf = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest("POST", url, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// postJSON posts to url and decodes the JSON response into out.
func postJSON(client *HTTPClient, url string, body, out interface{}) error {
	resp, err := client.Post(url, body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	data, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		if err := unmarshalJSON(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// getJSON fetches url and decodes the JSON response into out.
func getJSON(client *HTTPClient, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	data, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
	}
	if err := unmarshalJSON(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// submitFrames submits frames concurrently using worker pools
func submitFrames(ctx context.Context, config *Config, frames []Frame, stats *Stats) error {
	log.Printf("📤 Submitting %d frames with %d workers...", len(frames), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/frames"

	// Counters for statistics
	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	frameChan := make(chan Frame, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for frame := range frameChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleFrame(client, url, frame)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (success: %d, duplicate: %d, failed: %d)",
								total, len(frames), succ, dup, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (success: %d, duplicate: %d, failed: %d)",
								total, len(frames), succ, dup, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send frames to workers
	go func() {
		defer close(frameChan)
		for _, frame := range frames {
			select {
			case <-ctx.Done():
				return
			case frameChan <- frame:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.FramesSubmitted += int(atomic.LoadInt64(&submitted))
	stats.FramesSuccessful += int(atomic.LoadInt64(&successful))
	stats.FramesDuplicate += int(atomic.LoadInt64(&duplicate))
	stats.FramesFailed += int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Frame submission completed:
   Successful: %d
   Duplicate: %d
   Failed: %d
`, successful, duplicate, failed)

	return nil
}

// submitSingleFrame submits a single frame and returns the result
func submitSingleFrame(client *HTTPClient, url string, frame Frame) string {
	resp, err := client.Post(url, frame)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	// Parse response based on status code
	switch resp.StatusCode {
	case StatusAccepted:
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "success"
		}
		return "success" // Assume success for 202 even if parsing fails
	case StatusOK:
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate" // Assume duplicate for 200 even if parsing fails
	default:
		return "failed"
	}
}

// createSession creates a new assessment session.
func createSession(config *Config) (string, error) {
	client := newHTTPClient(config.Timeout)
	var resp SessionResponse
	if err := postJSON(client, config.BaseURL+"/sessions", nil, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// freezeBaseline asks the service to derive the session baseline.
func freezeBaseline(config *Config, sessionID string) (BaselineResponse, error) {
	client := newHTTPClient(config.Timeout)
	var resp BaselineResponse
	err := postJSON(client, config.BaseURL+"/sessions/"+sessionID+"/baseline", nil, &resp)
	return resp, err
}

// completeSession finalizes the session and returns the scored result.
func completeSession(config *Config, sessionID string) (Result, error) {
	client := newHTTPClient(config.Timeout)
	var result Result
	err := postJSON(client, config.BaseURL+"/sessions/"+sessionID+"/complete", nil, &result)
	return result, err
}

// waitForDrain polls /stats until the ingest queue is empty, so every
// submitted frame is recorded before the next phase transition.
func waitForDrain(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"
	deadline := time.Now().Add(DrainTimeout)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while draining: %w", ctx.Err())
		default:
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("queue did not drain within %s", DrainTimeout)
		}

		var stats map[string]interface{}
		if err := getJSON(client, url, &stats); err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}
		if queueLen, ok := stats["queueLength"].(float64); ok && queueLen == 0 {
			return nil
		}
		time.Sleep(DrainPollInterval)
	}
}
