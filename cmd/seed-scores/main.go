package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/ngage-io/tally/internal/testscores"
)

// Default configuration constants.
const (
	defaultNumTeams       = 100
	defaultSubsPerTeam    = 1
	defaultNumJudges      = 5
	defaultTopN           = 50
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultSeedRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		eventID     = flag.String("event", "seed-event", "Event ID to score against")
		numTeams    = flag.Int("teams", defaultNumTeams, "Number of teams to register")
		subsPerTeam = flag.Int("submissions", defaultSubsPerTeam, "Submissions registered per team")
		numJudges   = flag.Int("judges", defaultNumJudges, "Judges scoring every submission")
		topN        = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for generated scores (default: generated_scores_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for test output (default: seed_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testscores.ShowHelp()
		return
	}

	// Setup logging
	if err := testscores.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedRunTimeout)
	defer cancel()

	// Create test configuration
	config := &testscores.Config{
		BaseURL:            *baseURL,
		EventID:            *eventID,
		NumTeams:           *numTeams,
		SubmissionsPerTeam: *subsPerTeam,
		NumJudges:          *numJudges,
		TopN:               *topN,
		Workers:            *workers,
		Timeout:            *timeout,
		OutputFile:         *outputFile,
		LogFile:            *logFile,
		Verbose:            *verbose,
	}

	// Run the seeding test
	if err := testscores.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
