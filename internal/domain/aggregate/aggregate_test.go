package aggregate_test

import (
	"testing"

	aggregate "github.com/ngage-io/tally/internal/domain/aggregate"
	model "github.com/ngage-io/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func scoreWithTotal(judgeID string, total float64) model.Score {
	return model.Score{
		ID:           "score-" + judgeID,
		SubmissionID: "sub-1",
		JudgeID:      judgeID,
		TotalScore:   &total,
	}
}

func TestAggregateEmpty(t *testing.T) {
	Convey("Given an aggregator", t, func() {
		agg := aggregate.New()

		Convey("When aggregating zero scores", func() {
			result := agg.Aggregate("sub-1", nil)

			Convey("Then it should return the zero-judge state without dividing by zero", func() {
				So(result.SubmissionID, ShouldEqual, "sub-1")
				So(result.JudgeCount, ShouldEqual, 0)
				So(result.AverageScore, ShouldEqual, 0)
				So(result.ScoreRange.Min, ShouldEqual, 0)
				So(result.ScoreRange.Max, ShouldEqual, 0)
				So(result.CriteriaAverages, ShouldBeEmpty)
				So(result.HasScores(), ShouldBeFalse)
			})
		})
	})
}

func TestAggregateTotals(t *testing.T) {
	Convey("Given three judge totals of 80, 90 and 100", t, func() {
		scores := []model.Score{
			scoreWithTotal("j1", 80),
			scoreWithTotal("j2", 90),
			scoreWithTotal("j3", 100),
		}

		Convey("When aggregating with the mean method", func() {
			result := aggregate.New().Aggregate("sub-1", scores)

			Convey("Then the average, range and judge count should match", func() {
				So(result.AverageScore, ShouldEqual, 90.0)
				So(result.ScoreRange.Min, ShouldEqual, 80)
				So(result.ScoreRange.Max, ShouldEqual, 100)
				So(result.JudgeCount, ShouldEqual, 3)
				So(len(result.IndividualScores), ShouldEqual, 3)
			})
		})

		Convey("When aggregating with the median method", func() {
			result := aggregate.New(aggregate.WithMethod(aggregate.MethodMedian)).Aggregate("sub-1", scores)

			Convey("Then the middle total wins", func() {
				So(result.AverageScore, ShouldEqual, 90.0)
			})
		})

		Convey("When aggregating twice", func() {
			agg := aggregate.New()
			first := agg.Aggregate("sub-1", scores)
			second := agg.Aggregate("sub-1", scores)

			Convey("Then results should be identical", func() {
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given an even number of judge totals", t, func() {
		scores := []model.Score{
			scoreWithTotal("j1", 80),
			scoreWithTotal("j2", 90),
			scoreWithTotal("j3", 70),
			scoreWithTotal("j4", 100),
		}

		Convey("When aggregating with the median method", func() {
			result := aggregate.New(aggregate.WithMethod(aggregate.MethodMedian)).Aggregate("sub-1", scores)

			Convey("Then the two middle totals are averaged", func() {
				So(result.AverageScore, ShouldEqual, 85.0)
			})
		})

		Convey("When aggregating with a trimmed mean", func() {
			result := aggregate.New(
				aggregate.WithMethod(aggregate.MethodTrimmedMean),
				aggregate.WithTrimFraction(0.25),
			).Aggregate("sub-1", scores)

			Convey("Then the extremes are dropped", func() {
				So(result.AverageScore, ShouldEqual, 85.0)
			})
		})
	})
}

func TestCriteriaAverages(t *testing.T) {
	Convey("Given two scores where only one contains the design criterion", t, func() {
		total1, total2 := 80.0, 60.0
		scores := []model.Score{
			{
				ID: "s1", SubmissionID: "sub-1", JudgeID: "j1", TotalScore: &total1,
				Values: map[string]model.CriterionValue{
					"design":  model.NumberValue(80),
					"clarity": model.NumberValue(70),
				},
			},
			{
				ID: "s2", SubmissionID: "sub-1", JudgeID: "j2", TotalScore: &total2,
				Values: map[string]model.CriterionValue{
					"clarity": model.NumberValue(50),
				},
			},
		}

		Convey("When aggregating", func() {
			result := aggregate.New().Aggregate("sub-1", scores)

			Convey("Then absence must not be treated as zero", func() {
				So(result.CriteriaAverages["design"], ShouldEqual, 80.0)
				So(result.CriteriaAverages["clarity"], ShouldEqual, 60.0)
			})
		})
	})
}

func TestWeightedTotals(t *testing.T) {
	Convey("Given a rubric with weighted criteria", t, func() {
		r := model.ScoringRubric{
			ID:   "rubric-1",
			Name: "Weighted",
			Criteria: []model.ScoringCriterion{
				{Key: "creativity", Name: "Creativity", Type: model.CriterionNumeric, MaxScore: 100, Weight: 3},
				{Key: "demo", Name: "Demo", Type: model.CriterionBoolean, MaxScore: 50, Weight: 1},
			},
		}
		agg := aggregate.New(aggregate.WithRubric(r))

		Convey("When a record has no precomputed total", func() {
			scores := []model.Score{{
				ID: "s1", SubmissionID: "sub-1", JudgeID: "j1",
				Values: map[string]model.CriterionValue{
					"creativity": model.NumberValue(50), // fraction 0.5, weight 3
					"demo":       model.BoolValue(true), // fraction 1.0, weight 1
				},
			}}
			result := agg.Aggregate("sub-1", scores)

			Convey("Then the total is the weighted fraction scaled to max possible", func() {
				// (0.5*3 + 1.0*1) / 4 = 0.625; 0.625 * 150 = 93.75
				So(result.AverageScore, ShouldAlmostEqual, 93.75, 1e-9)
			})
		})

		Convey("When a record carries a judge-supplied total", func() {
			total := 42.0
			scores := []model.Score{{
				ID: "s1", SubmissionID: "sub-1", JudgeID: "j1", TotalScore: &total,
				Values: map[string]model.CriterionValue{
					"creativity": model.NumberValue(100),
				},
			}}
			result := agg.Aggregate("sub-1", scores)

			Convey("Then the supplied total is trusted as-is", func() {
				So(result.AverageScore, ShouldEqual, 42.0)
			})
		})

		Convey("When a record has values for none of the rubric criteria", func() {
			scores := []model.Score{{
				ID: "s1", SubmissionID: "sub-1", JudgeID: "j1",
				Values: map[string]model.CriterionValue{},
			}}
			result := agg.Aggregate("sub-1", scores)

			Convey("Then the judge contributes a zero total rather than failing", func() {
				So(result.JudgeCount, ShouldEqual, 1)
				So(result.AverageScore, ShouldEqual, 0)
			})
		})

		Convey("When boolean criteria feed criteria averages", func() {
			scores := []model.Score{
				{ID: "s1", SubmissionID: "sub-1", JudgeID: "j1", Values: map[string]model.CriterionValue{
					"demo": model.BoolValue(true),
				}},
				{ID: "s2", SubmissionID: "sub-1", JudgeID: "j2", Values: map[string]model.CriterionValue{
					"demo": model.BoolValue(false),
				}},
			}
			result := agg.Aggregate("sub-1", scores)

			Convey("Then booleans average as points against the criterion max", func() {
				So(result.CriteriaAverages["demo"], ShouldEqual, 25.0)
			})
		})
	})
}
