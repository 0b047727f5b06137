// Package leaderboard ranks teams within an event from aggregated
// submission scores.
//
// Ordering: average score descending, compared at epsilon precision
// (1e-9 by default). Within a tie, submission count descending, then team
// name ascending, then team ID ascending, which guarantees a total order
// and reproducible positions. Positions are 1-based and strictly
// increasing; tied teams never share a position.
package leaderboard

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/ngage-io/tally/internal/domain/model"
)

// CombineMode controls how multiple scored submissions from one team fold
// into a single entry.
type CombineMode string

const (
	// CombineAverage weighs every scored submission equally.
	CombineAverage CombineMode = "average"
	// CombineBest keeps only the team's highest-scoring submission.
	CombineBest CombineMode = "best"
)

const defaultEpsilon = 1e-9

// Builder computes leaderboards. It is pure and safe for concurrent use.
type Builder struct {
	combine CombineMode
	epsilon float64
	now     func() time.Time
}

// New constructs a Builder with configuration options.
func New(opts ...Option) *Builder {
	b := &Builder{
		combine: CombineAverage,
		epsilon: defaultEpsilon,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// teamAccumulator collects one team's scored submissions before ranking.
type teamAccumulator struct {
	teamID       string
	averages     []float64
	criteriaSums map[string]float64
	criteriaCnts map[string]int
	bestIndex    int
	bestCriteria map[string]float64
}

// Build ranks all teams of an event. Submissions without any scores count
// toward metadata but produce no entry; an event with nothing scored yields
// an empty leaderboard, not an error.
func (b *Builder) Build(
	eventID string,
	submissions []model.Submission,
	teamNames map[string]string,
	aggregates map[string]model.AggregatedScore,
) model.Leaderboard {
	lb := model.Leaderboard{
		EventID:      eventID,
		Entries:      []model.LeaderboardEntry{},
		CalculatedAt: b.now(),
	}

	teams := map[string]*teamAccumulator{}
	for _, sub := range submissions {
		if sub.EventID != eventID && sub.EventID != "" {
			continue
		}
		lb.Metadata.TotalSubmissions++

		agg, ok := aggregates[sub.ID]
		if !ok || !agg.HasScores() {
			continue
		}
		lb.Metadata.TotalScores += agg.JudgeCount

		acc := teams[sub.TeamID]
		if acc == nil {
			acc = &teamAccumulator{
				teamID:       sub.TeamID,
				criteriaSums: map[string]float64{},
				criteriaCnts: map[string]int{},
				bestIndex:    -1,
			}
			teams[sub.TeamID] = acc
		}
		acc.averages = append(acc.averages, agg.AverageScore)
		for key, avg := range agg.CriteriaAverages {
			acc.criteriaSums[key] += avg
			acc.criteriaCnts[key]++
		}
		if acc.bestIndex < 0 || agg.AverageScore > acc.averages[acc.bestIndex] {
			acc.bestIndex = len(acc.averages) - 1
			acc.bestCriteria = agg.CriteriaAverages
		}
	}

	entries := make([]model.LeaderboardEntry, 0, len(teams))
	for teamID, acc := range teams {
		name := teamNames[teamID]
		if name == "" {
			name = teamID
		}
		entries = append(entries, model.LeaderboardEntry{
			TeamID:          teamID,
			TeamName:        name,
			AverageScore:    b.combineAverages(acc),
			SubmissionCount: len(acc.averages),
			CriteriaScores:  b.combineCriteria(acc),
		})
	}

	b.sortEntries(entries)
	for i := range entries {
		entries[i].Position = i + 1
	}

	lb.Entries = entries
	lb.TeamCount = len(entries)
	return lb
}

func (b *Builder) combineAverages(acc *teamAccumulator) float64 {
	if b.combine == CombineBest {
		return acc.averages[acc.bestIndex]
	}
	var sum float64
	for _, avg := range acc.averages {
		sum += avg
	}
	return sum / float64(len(acc.averages))
}

func (b *Builder) combineCriteria(acc *teamAccumulator) map[string]float64 {
	if b.combine == CombineBest {
		out := make(map[string]float64, len(acc.bestCriteria))
		for key, avg := range acc.bestCriteria {
			out[key] = avg
		}
		return out
	}
	out := make(map[string]float64, len(acc.criteriaSums))
	for key, sum := range acc.criteriaSums {
		out[key] = sum / float64(acc.criteriaCnts[key])
	}
	return out
}

// sortEntries orders by average score desc at epsilon precision, then
// submission count desc, then team name asc, then team ID asc.
func (b *Builder) sortEntries(entries []model.LeaderboardEntry) {
	slices.SortFunc(entries, func(x, y model.LeaderboardEntry) int {
		if math.Abs(x.AverageScore-y.AverageScore) > b.epsilon {
			if x.AverageScore > y.AverageScore {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(y.SubmissionCount, x.SubmissionCount); c != 0 {
			return c
		}
		if c := cmp.Compare(x.TeamName, y.TeamName); c != 0 {
			return c
		}
		return cmp.Compare(x.TeamID, y.TeamID)
	})
}

// TopEntries returns the first min(n, len) entries of an already-ranked
// leaderboard. Pure slicing; no recomputation.
func TopEntries(lb model.Leaderboard, n int) []model.LeaderboardEntry {
	if n < 0 {
		n = 0
	}
	if n > len(lb.Entries) {
		n = len(lb.Entries)
	}
	return lb.Entries[:n]
}
