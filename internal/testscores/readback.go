package testscores

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveAggregates fetches the aggregated score for every submission concurrently.
func retrieveAggregates(ctx context.Context, config *Config, submissions []SubmissionPayload, stats *Stats) ([]AggregateResponse, error) {
	log.Printf("🧮 Retrieving aggregates for %d submissions with %d workers...", len(submissions), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	aggregates := make([]AggregateResponse, len(submissions))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					submissionID := submissions[index].ID
					agg, err := retrieveSingleAggregate(ctx, client, config.BaseURL, submissionID)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get aggregate for %s: %v", submissionID, err)
						}
					} else {
						aggregates[index] = agg
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Aggregate progress: %d/%d retrieved (success: %d, failed: %d)",
								total, len(submissions), ret, fail)
						} else {
							log.Printf("\r🧮 Aggregates: %d/%d retrieved (success: %d, failed: %d)",
								total, len(submissions), ret, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send submission indices to workers
	go func() {
		defer close(indexChan)
		for i := range submissions {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		log.Println() // New line after progress indicator
	}

	// Filter out empty entries (failed retrievals)
	validAggregates := make([]AggregateResponse, 0, len(aggregates))
	for _, agg := range aggregates {
		if agg.SubmissionID != "" { // Empty SubmissionID indicates failed retrieval
			validAggregates = append(validAggregates, agg)
		}
	}

	// Update stats
	stats.AggregatesRetrieved = len(validAggregates)

	log.Printf(`✅ Aggregate retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validAggregates), int(atomic.LoadInt64(&failed)))

	return validAggregates, nil
}

// retrieveSingleAggregate fetches the aggregated score for a single submission.
func retrieveSingleAggregate(ctx context.Context, client *HTTPClient, baseURL, submissionID string) (AggregateResponse, error) {
	requestURL := fmt.Sprintf("%s/submissions/%s/score", baseURL, url.PathEscape(submissionID))

	resp, err := client.Get(requestURL)
	if err != nil {
		return AggregateResponse{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return AggregateResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return AggregateResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var agg AggregateResponse
	if err := unmarshalJSON(body, &agg); err != nil {
		return AggregateResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return agg, nil
}

// getLeaderboard retrieves the top N leaderboard entries for the event.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	log.Printf("🥇 Getting top %d leaderboard entries for event %s...", config.TopN, config.EventID)

	client := newHTTPClient(config.Timeout)
	requestURL := fmt.Sprintf("%s/leaderboard?event_id=%s&limit=%s",
		config.BaseURL, url.QueryEscape(config.EventID), strconv.Itoa(config.TopN))

	resp, err := client.Get(requestURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var leaderboard LeaderboardResponse
	if err := unmarshalJSON(body, &leaderboard); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardEntries = len(leaderboard.Entries)
	log.Printf("✅ Retrieved %d leaderboard entries", len(leaderboard.Entries))

	return leaderboard.Entries, nil
}
