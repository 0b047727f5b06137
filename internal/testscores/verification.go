package testscores

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
)

// expectedEntry is a locally computed team standing.
type expectedEntry struct {
	TeamID      string
	Score       float64
	Submissions int
}

// verifyResults checks the service's aggregates and leaderboard against a
// locally computed ranking of the generated scores.
func verifyResults(ctx context.Context, config *Config, submissions []SubmissionPayload, scores []ScorePayload, aggregates []AggregateResponse, leaderboard []Entry, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(aggregates) == 0 {
		return fmt.Errorf("no aggregates to verify")
	}

	expectedBySubmission := expectedSubmissionAverages(scores)
	expected := expectedStandings(submissions, expectedBySubmission)

	// Per-submission aggregate checks
	mismatches := 0
	for _, agg := range aggregates {
		want, ok := expectedBySubmission[agg.SubmissionID]
		if !ok {
			continue
		}
		if math.Abs(agg.AverageScore-want) > ScoreEpsilon {
			mismatches++
			if config.Verbose {
				log.Printf("⚠️  Aggregate mismatch for %s: got %.6f, want %.6f",
					agg.SubmissionID, agg.AverageScore, want)
			}
		}
	}
	if mismatches > 0 {
		log.Printf("⚠️  %d/%d submission aggregates differ from local computation", mismatches, len(aggregates))
	} else {
		log.Println("✅ Submission aggregates verified")
	}

	// Leaderboard consistency checks
	if len(leaderboard) > 0 {
		if err := verifyLeaderboardConsistency(expected, leaderboard); err != nil {
			log.Printf("⚠️  Leaderboard consistency warning: %v", err)
		} else {
			log.Println("✅ Leaderboard consistency verified")
		}
	}

	displayTopTeams(expected, leaderboard, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// expectedSubmissionAverages computes the mean judge total per submission.
func expectedSubmissionAverages(scores []ScorePayload) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range scores {
		if s.TotalScore == nil {
			continue
		}
		sums[s.SubmissionID] += *s.TotalScore
		counts[s.SubmissionID]++
	}

	averages := make(map[string]float64, len(sums))
	for id, sum := range sums {
		averages[id] = sum / float64(counts[id])
	}
	return averages
}

// expectedStandings averages submission scores per team and sorts by score
// descending, breaking ties by team ID ascending.
func expectedStandings(submissions []SubmissionPayload, bySubmission map[string]float64) []expectedEntry {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, sub := range submissions {
		avg, ok := bySubmission[sub.ID]
		if !ok {
			continue
		}
		sums[sub.TeamID] += avg
		counts[sub.TeamID]++
	}

	entries := make([]expectedEntry, 0, len(sums))
	for teamID, sum := range sums {
		entries = append(entries, expectedEntry{
			TeamID:      teamID,
			Score:       sum / float64(counts[teamID]),
			Submissions: counts[teamID],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TeamID < entries[j].TeamID
	})
	return entries
}

// verifyLeaderboardConsistency checks the server leaderboard against the
// locally computed standings.
func verifyLeaderboardConsistency(expected []expectedEntry, leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}
	if len(expected) == 0 {
		return fmt.Errorf("no locally computed standings")
	}

	// Check if top entry in leaderboard matches the locally computed winner
	topExpected := expected[0]
	topLeaderboard := leaderboard[0]

	if topExpected.TeamID != topLeaderboard.TeamID {
		return fmt.Errorf("top leaderboard team (%s) does not match locally computed winner (%s)",
			topLeaderboard.TeamID, topExpected.TeamID)
	}

	if math.Abs(topExpected.Score-topLeaderboard.AverageScore) > ScoreEpsilon {
		return fmt.Errorf("top leaderboard score (%.6f) does not match locally computed score (%.6f)",
			topLeaderboard.AverageScore, topExpected.Score)
	}

	// Check if leaderboard is properly sorted with contiguous positions
	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].AverageScore > leaderboard[i-1].AverageScore+ScoreEpsilon {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher score than entry %d",
				i, i-1)
		}
		if leaderboard[i].Position != leaderboard[i-1].Position+1 {
			return fmt.Errorf("leaderboard positions not contiguous: entry %d has position %d after %d",
				i, leaderboard[i].Position, leaderboard[i-1].Position)
		}
	}

	return nil
}

// displayTopTeams shows the top teams from the local computation and the server.
func displayTopTeams(expected []expectedEntry, leaderboard []Entry, verbose bool) {
	topN := 10
	if len(expected) < topN {
		topN = len(expected)
	}

	log.Printf("🏆 Top %d teams from local computation:", topN)
	for i := 0; i < topN; i++ {
		entry := expected[i]
		log.Printf("   %d. %s - Score: %.3f (%d submissions)", i+1, entry.TeamID, entry.Score, entry.Submissions)
	}

	if len(leaderboard) > 0 {
		leaderboardTopN := topN
		if len(leaderboard) < leaderboardTopN {
			leaderboardTopN = len(leaderboard)
		}

		log.Printf("🥇 Top %d teams from leaderboard:", leaderboardTopN)
		for i := 0; i < leaderboardTopN; i++ {
			entry := leaderboard[i]
			log.Printf("   %d. %s (%s) - Score: %.3f", entry.Position, entry.TeamID, entry.TeamName, entry.AverageScore)
		}
	}

	if verbose {
		// Show some statistics
		if len(expected) > 0 {
			avgScore := calculateAverageScore(expected)
			maxScore := expected[0].Score
			minScore := expected[len(expected)-1].Score

			log.Printf(`📊 Score statistics:
   Average: %.3f
   Maximum: %.3f
   Minimum: %.3f
`, avgScore, maxScore, minScore)
		}
	}
}

// calculateAverageScore calculates the average team score.
func calculateAverageScore(entries []expectedEntry) float64 {
	if len(entries) == 0 {
		return 0
	}

	sum := 0.0
	for _, entry := range entries {
		sum += entry.Score
	}

	return sum / float64(len(entries))
}
