package testscores

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
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
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

// registerRoster registers all teams and submissions sequentially.
// Registration volume is small compared to scores, so no pool here.
func registerRoster(ctx context.Context, config *Config, teams []TeamPayload, submissions []SubmissionPayload) error {
	client := newHTTPClient(config.Timeout)

	log.Printf("📋 Registering %d teams and %d submissions...", len(teams), len(submissions))

	for _, team := range teams {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during registration: %w", ctx.Err())
		default:
		}
		if err := postExpectCreated(client, config.BaseURL+"/teams", team); err != nil {
			return fmt.Errorf("failed to register team %s: %w", team.ID, err)
		}
	}

	for _, sub := range submissions {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during registration: %w", ctx.Err())
		default:
		}
		if err := postExpectCreated(client, config.BaseURL+"/submissions", sub); err != nil {
			return fmt.Errorf("failed to register submission %s: %w", sub.ID, err)
		}
	}

	log.Println("✅ Roster registration completed")
	return nil
}

// postExpectCreated posts a payload and requires a 201 response.
func postExpectCreated(client *HTTPClient, url string, payload interface{}) error {
	resp, err := client.Post(url, payload)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusCreated {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// submitScores submits scores concurrently using worker pools
func submitScores(ctx context.Context, config *Config, scores []ScorePayload, stats *Stats) error {
	log.Printf("📤 Submitting %d scores with %d workers...", len(scores), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/scores"

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
	scoreChan := make(chan ScorePayload, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for score := range scoreChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleScore(ctx, client, url, score)

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
								total, len(scores), succ, dup, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (success: %d, duplicate: %d, failed: %d)",
								total, len(scores), succ, dup, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send scores to workers
	go func() {
		defer close(scoreChan)
		for _, score := range scores {
			select {
			case <-ctx.Done():
				return
			case scoreChan <- score:
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
	stats.ScoresSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ScoresSuccessful = int(atomic.LoadInt64(&successful))
	stats.ScoresDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ScoresFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Score submission completed:
   Successful: %d
   Duplicate: %d
   Failed: %d
`, stats.ScoresSuccessful, stats.ScoresDuplicate, stats.ScoresFailed)

	return nil
}

// submitSingleScore submits a single score and returns the result
func submitSingleScore(ctx context.Context, client *HTTPClient, url string, score ScorePayload) string {
	resp, err := client.Post(url, score)
	if err != nil {
		return "failed"
	}
	defer resp.Body.Close()

	// Read response body
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	// Parse response based on status code
	switch resp.StatusCode {
	case StatusAccepted:
		// Accepted - new score
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "success"
		}
		return "success" // Assume success for 202 even if parsing fails
	case StatusOK:
		// OK - duplicate score
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate" // Assume duplicate for 200 even if parsing fails
	default:
		// Error
		return "failed"
	}
}
