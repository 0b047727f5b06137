package testscores

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ngage-io/tally/pkg/logger"
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
		logFile = "seed_log_" + timestamp + ".log"
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

// ShowHelp prints usage information for the seed scores tool.
func ShowHelp() {
	os.Stdout.WriteString(`Tally Score Seeder
==================

A concurrent tool for seeding and verifying the Tally judging service.
It registers teams and submissions, posts judge scores, then checks the
event leaderboard against a locally computed ranking.

Usage:
  go run cmd/seed-scores/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -event string
        Event ID to score against (default "seed-event")
  -teams int
        Number of teams to register (default 100)
  -submissions int
        Submissions registered per team (default 1)
  -judges int
        Judges scoring every submission (default 5)
  -top int
        Number of top entries to fetch from leaderboard (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated scores (default: generated_scores_TIMESTAMP.json)
  -log string
        Log file for test output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-scores/main.go

  # Seed a bigger event with more judges
  go run cmd/seed-scores/main.go -teams 500 -judges 9 -workers 16

  # Seed with verbose output
  go run cmd/seed-scores/main.go -verbose -teams 200

  # Seed with a custom log file
  go run cmd/seed-scores/main.go -teams 500 -log my_seed.log
`)
}
