package leaderboard_test

import (
	"testing"
	"time"

	leaderboard "github.com/ngage-io/tally/internal/domain/leaderboard"
	model "github.com/ngage-io/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func agg(submissionID string, judges int, avg float64) model.AggregatedScore {
	return model.AggregatedScore{
		SubmissionID: submissionID,
		JudgeCount:   judges,
		AverageScore: avg,
		ScoreRange:   model.ScoreRange{Min: avg, Max: avg},
	}
}

func TestBuildOrdering(t *testing.T) {
	Convey("Given teams A and B tied on average with C behind", t, func() {
		// A has two submissions averaging 95, B one at 95, C one at 70.
		submissions := []model.Submission{
			{ID: "s1", EventID: "ev-1", TeamID: "team-a"},
			{ID: "s2", EventID: "ev-1", TeamID: "team-a"},
			{ID: "s3", EventID: "ev-1", TeamID: "team-b"},
			{ID: "s4", EventID: "ev-1", TeamID: "team-c"},
		}
		teamNames := map[string]string{"team-a": "Alpha", "team-b": "Bravo", "team-c": "Charlie"}
		aggregates := map[string]model.AggregatedScore{
			"s1": agg("s1", 3, 95),
			"s2": agg("s2", 2, 95),
			"s3": agg("s3", 3, 95),
			"s4": agg("s4", 1, 70),
		}
		builder := leaderboard.New()

		Convey("When building the leaderboard", func() {
			lb := builder.Build("ev-1", submissions, teamNames, aggregates)

			Convey("Then ties break by submission count before team name", func() {
				So(lb.TeamCount, ShouldEqual, 3)
				So(lb.Entries[0].TeamID, ShouldEqual, "team-a")
				So(lb.Entries[0].Position, ShouldEqual, 1)
				So(lb.Entries[0].SubmissionCount, ShouldEqual, 2)
				So(lb.Entries[1].TeamID, ShouldEqual, "team-b")
				So(lb.Entries[1].Position, ShouldEqual, 2)
				So(lb.Entries[2].TeamID, ShouldEqual, "team-c")
				So(lb.Entries[2].Position, ShouldEqual, 3)
			})

			Convey("And metadata counts every submission and judge", func() {
				So(lb.Metadata.TotalSubmissions, ShouldEqual, 4)
				So(lb.Metadata.TotalScores, ShouldEqual, 9)
			})
		})

		Convey("When building twice on identical input", func() {
			first := builder.Build("ev-1", submissions, teamNames, aggregates)
			second := builder.Build("ev-1", submissions, teamNames, aggregates)

			Convey("Then entries and positions are identical", func() {
				So(second.Entries, ShouldResemble, first.Entries)
			})
		})
	})

	Convey("Given a full tie on score and submission count", t, func() {
		submissions := []model.Submission{
			{ID: "s1", EventID: "ev-1", TeamID: "team-z"},
			{ID: "s2", EventID: "ev-1", TeamID: "team-a"},
		}
		teamNames := map[string]string{"team-z": "Zulu", "team-a": "Alpha"}
		aggregates := map[string]model.AggregatedScore{
			"s1": agg("s1", 1, 80),
			"s2": agg("s2", 1, 80),
		}

		Convey("When building the leaderboard", func() {
			lb := leaderboard.New().Build("ev-1", submissions, teamNames, aggregates)

			Convey("Then team name ascending decides, with strictly increasing positions", func() {
				So(lb.Entries[0].TeamName, ShouldEqual, "Alpha")
				So(lb.Entries[0].Position, ShouldEqual, 1)
				So(lb.Entries[1].TeamName, ShouldEqual, "Zulu")
				So(lb.Entries[1].Position, ShouldEqual, 2)
			})
		})
	})
}

func TestBuildEmptyAndUnscored(t *testing.T) {
	Convey("Given an event with no scored submissions", t, func() {
		submissions := []model.Submission{
			{ID: "s1", EventID: "ev-1", TeamID: "team-a"},
		}
		aggregates := map[string]model.AggregatedScore{
			"s1": agg("s1", 0, 0),
		}

		Convey("When building the leaderboard", func() {
			lb := leaderboard.New().Build("ev-1", submissions, nil, aggregates)

			Convey("Then it is empty, not an error", func() {
				So(lb.HasEntries(), ShouldBeFalse)
				So(lb.TeamCount, ShouldEqual, 0)
				So(lb.Metadata.TotalSubmissions, ShouldEqual, 1)
				So(lb.Metadata.TotalScores, ShouldEqual, 0)
			})
		})
	})

	Convey("Given no submissions at all", t, func() {
		lb := leaderboard.New().Build("ev-1", nil, nil, nil)

		Convey("Then the leaderboard is empty with zero counts", func() {
			So(lb.HasEntries(), ShouldBeFalse)
			So(lb.TeamCount, ShouldEqual, 0)
			So(lb.Metadata.TotalSubmissions, ShouldEqual, 0)
		})
	})
}

func TestCombineModes(t *testing.T) {
	Convey("Given one team with submissions at 60 and 100", t, func() {
		submissions := []model.Submission{
			{ID: "s1", EventID: "ev-1", TeamID: "team-a"},
			{ID: "s2", EventID: "ev-1", TeamID: "team-a"},
		}
		aggregates := map[string]model.AggregatedScore{
			"s1": agg("s1", 1, 60),
			"s2": agg("s2", 1, 100),
		}

		Convey("When combining with equal weight per submission", func() {
			lb := leaderboard.New().Build("ev-1", submissions, nil, aggregates)

			Convey("Then the entry averages the submissions", func() {
				So(lb.Entries[0].AverageScore, ShouldEqual, 80.0)
				So(lb.Entries[0].SubmissionCount, ShouldEqual, 2)
			})
		})

		Convey("When combining with best-submission mode", func() {
			lb := leaderboard.New(leaderboard.WithCombineMode(leaderboard.CombineBest)).
				Build("ev-1", submissions, nil, aggregates)

			Convey("Then the highest submission wins", func() {
				So(lb.Entries[0].AverageScore, ShouldEqual, 100.0)
				So(lb.Entries[0].SubmissionCount, ShouldEqual, 2)
			})
		})
	})
}

func TestCriteriaScores(t *testing.T) {
	Convey("Given submissions with per-criterion averages", t, func() {
		submissions := []model.Submission{
			{ID: "s1", EventID: "ev-1", TeamID: "team-a"},
			{ID: "s2", EventID: "ev-1", TeamID: "team-a"},
		}
		a1 := agg("s1", 1, 90)
		a1.CriteriaAverages = map[string]float64{"design": 80, "clarity": 90}
		a2 := agg("s2", 1, 70)
		a2.CriteriaAverages = map[string]float64{"design": 60}
		aggregates := map[string]model.AggregatedScore{"s1": a1, "s2": a2}

		Convey("When building the leaderboard", func() {
			lb := leaderboard.New().Build("ev-1", submissions, nil, aggregates)

			Convey("Then criteria averages skip submissions lacking the key", func() {
				So(lb.Entries[0].CriteriaScores["design"], ShouldEqual, 70.0)
				So(lb.Entries[0].CriteriaScores["clarity"], ShouldEqual, 90.0)
			})
		})
	})
}

func TestTopEntries(t *testing.T) {
	Convey("Given a ten-entry leaderboard", t, func() {
		entries := make([]model.LeaderboardEntry, 10)
		for i := range entries {
			entries[i] = model.LeaderboardEntry{TeamID: string(rune('a' + i)), Position: i + 1}
		}
		lb := model.Leaderboard{EventID: "ev-1", Entries: entries, TeamCount: 10, CalculatedAt: time.Now()}

		Convey("When taking the top three", func() {
			top := leaderboard.TopEntries(lb, 3)

			Convey("Then exactly the first three come back in order", func() {
				So(len(top), ShouldEqual, 3)
				So(top[0].Position, ShouldEqual, 1)
				So(top[2].Position, ShouldEqual, 3)
			})
		})

		Convey("When asking for more entries than exist", func() {
			top := leaderboard.TopEntries(lb, 50)

			Convey("Then the full list comes back without error", func() {
				So(len(top), ShouldEqual, 10)
			})
		})

		Convey("When asking for a negative count", func() {
			top := leaderboard.TopEntries(lb, -1)

			Convey("Then the slice is empty", func() {
				So(len(top), ShouldEqual, 0)
			})
		})
	})
}
