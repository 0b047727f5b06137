package testscores

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ngage-io/tally/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete scoring test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting tally scoring test",
		logger.String("baseURL", config.BaseURL),
		logger.String("eventID", config.EventID),
		logger.Int("teams", config.NumTeams),
		logger.Int("submissionsPerTeam", config.SubmissionsPerTeam),
		logger.Int("judges", config.NumJudges),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate teams and submissions
	teams, submissions, err := generateRoster(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("roster generation failed: %w", err)
	}

	// Step 3: Register the roster
	if err := registerRoster(ctx, config, teams, submissions); err != nil {
		return fmt.Errorf("roster registration failed: %w", err)
	}

	// Step 4: Generate judge scores
	scores, err := generateScores(ctx, config, submissions, stats)
	if err != nil {
		return fmt.Errorf("score generation failed: %w", err)
	}

	// Step 5: Submit scores concurrently
	if err := submitScores(ctx, config, scores, stats); err != nil {
		return fmt.Errorf("score submission failed: %w", err)
	}

	// Step 6: Wait for processing
	logger.Get().Info(ctx, "waiting for scores to be processed")
	time.Sleep(ProcessingDrainDelay)

	// Step 7: Retrieve aggregates concurrently
	aggregates, err := retrieveAggregates(ctx, config, submissions, stats)
	if err != nil {
		return fmt.Errorf("aggregate retrieval failed: %w", err)
	}

	// Step 8: Get leaderboard
	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 9: Verify results
	if err := verifyResults(ctx, config, submissions, scores, aggregates, leaderboard, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 10: Save scores to file
	if err := saveScoresToFile(ctx, config, scores); err != nil {
		logger.Get().Warn(ctx, "failed to save scores to file", logger.Error(err))
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

// saveScoresToFile saves the generated scores to a JSON file.
func saveScoresToFile(ctx context.Context, config *Config, scores []ScorePayload) error {
	if len(scores) == 0 {
		return fmt.Errorf("no scores to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_scores_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write scores to file
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

	for i, score := range scores {
		jsonData, err := marshalJSON(score)
		if err != nil {
			return fmt.Errorf("failed to marshal score %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write score %d: %w", i, err)
		}

		// Add comma except for last score
		if i < len(scores)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "scores saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, scoresPerSecond float64

	if stats.ScoresSubmitted > 0 {
		successRate = float64(stats.ScoresSuccessful) / float64(stats.ScoresSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		scoresPerSecond = float64(stats.ScoresSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("teamsRegistered", stats.TeamsRegistered),
		logger.Int("submissionsGenerated", stats.SubmissionsGenerated),
		logger.Int("scoresGenerated", stats.ScoresGenerated),
		logger.Int("scoresSubmitted", stats.ScoresSubmitted),
		logger.Int("scoresSuccessful", stats.ScoresSuccessful),
		logger.Int("scoresDuplicate", stats.ScoresDuplicate),
		logger.Int("scoresFailed", stats.ScoresFailed),
		logger.Int("aggregatesRetrieved", stats.AggregatesRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("scoresPerSecond", scoresPerSecond))
}
