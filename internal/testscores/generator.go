package testscores

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/ngage-io/tally/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	judgeProfileCount  = 6
)

// Constants for judge score ranges, on a 0-100 scale.
const (
	harshJudgeMin      = 20.0
	harshJudgeRange    = 30.0
	typicalJudgeMin    = 50.0
	typicalJudgeRange  = 30.0
	generousJudgeMin   = 75.0
	generousJudgeRange = 20.0
	extremeLowMin      = 5.0
	extremeLowRange    = 15.0
	extremeHighMin     = 90.0
	extremeHighRange   = 10.0
	fullSpreadMin      = 10.0
	fullSpreadRange    = 90.0
	teamStrengthMin    = -10.0
	teamStrengthRange  = 20.0
	minAchievableScore = 0.0
	maxAchievableScore = 100.0
)

// Constants for judge profile cases.
const (
	caseHarshJudge    = 0
	caseTypicalJudge  = 1
	caseGenerousJudge = 2
	caseExtremeLow    = 3
	caseExtremeHigh   = 4
	caseFullSpread    = 5
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateRoster creates teams and their submissions with unique IDs.
func generateRoster(ctx context.Context, config *Config, stats *Stats) ([]TeamPayload, []SubmissionPayload, error) {
	logger.Get().Info(ctx, "generating roster",
		logger.Int("teams", config.NumTeams),
		logger.Int("submissionsPerTeam", config.SubmissionsPerTeam))

	teams := make([]TeamPayload, config.NumTeams)
	submissions := make([]SubmissionPayload, 0, config.NumTeams*config.SubmissionsPerTeam)

	for i := 0; i < config.NumTeams; i++ {
		teamID := uuid.New().String()
		teams[i] = TeamPayload{
			ID:   teamID,
			Name: "Team " + strconv.Itoa(i+1),
		}

		for j := 0; j < config.SubmissionsPerTeam; j++ {
			submissions = append(submissions, SubmissionPayload{
				ID:      uuid.New().String(),
				EventID: config.EventID,
				TeamID:  teamID,
			})
		}
	}

	stats.TeamsRegistered = len(teams)
	stats.SubmissionsGenerated = len(submissions)
	return teams, submissions, nil
}

// generateScores creates one score payload per judge per submission.
// Each team gets a hidden strength offset so the final ranking is not
// pure noise, and each judge draws from a varied severity profile.
func generateScores(ctx context.Context, config *Config, submissions []SubmissionPayload, stats *Stats) ([]ScorePayload, error) {
	logger.Get().Info(ctx, "generating scores",
		logger.Int("submissions", len(submissions)),
		logger.Int("judges", config.NumJudges))

	judgeIDs := make([]string, config.NumJudges)
	for i := range judgeIDs {
		judgeIDs[i] = "judge_" + strconv.Itoa(i+1)
	}

	strength := make(map[string]float64, config.NumTeams)

	scores := make([]ScorePayload, 0, len(submissions)*config.NumJudges)
	for _, sub := range submissions {
		offset, ok := strength[sub.TeamID]
		if !ok {
			offset = teamStrengthMin + getRandomFloat()*teamStrengthRange
			strength[sub.TeamID] = offset
		}

		for _, judgeID := range judgeIDs {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during score generation: %w", ctx.Err())
			default:
			}

			total := clampScore(generateVariedTotal() + offset)
			scores = append(scores, ScorePayload{
				SubmissionID: sub.ID,
				JudgeID:      judgeID,
				EventID:      sub.EventID,
				TotalScore:   &total,
			})
		}
	}

	stats.ScoresGenerated = len(scores)
	logger.Get().Info(ctx, "generated scores successfully", logger.Int("count", len(scores)))

	return scores, nil
}

// generateVariedTotal draws a total score from a varied judge profile.
func generateVariedTotal() float64 {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(judgeProfileCount))
	switch randNum.Int64() {
	case caseHarshJudge:
		// Harsh judges (20 - 50)
		return harshJudgeMin + getRandomFloat()*harshJudgeRange
	case caseTypicalJudge:
		// Typical judges (50 - 80) - most common
		return typicalJudgeMin + getRandomFloat()*typicalJudgeRange
	case caseGenerousJudge:
		// Generous judges (75 - 95)
		return generousJudgeMin + getRandomFloat()*generousJudgeRange
	case caseExtremeLow:
		// Extreme low outliers (5 - 20) - rare
		return extremeLowMin + getRandomFloat()*extremeLowRange
	case caseExtremeHigh:
		// Extreme high outliers (90 - 100) - rare
		return extremeHighMin + getRandomFloat()*extremeHighRange
	case caseFullSpread:
		// Random across the full range (10 - 100)
		return fullSpreadMin + getRandomFloat()*fullSpreadRange
	default:
		return fullSpreadMin + getRandomFloat()*fullSpreadRange
	}
}

// clampScore keeps a total within the achievable score range.
func clampScore(v float64) float64 {
	if v < minAchievableScore {
		return minAchievableScore
	}
	if v > maxAchievableScore {
		return maxAchievableScore
	}
	return v
}
