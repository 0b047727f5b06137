// Package aggregate turns the score records for one submission into a
// single statistical summary.
//
// Per-judge totals follow the weighted rule: when a record carries a
// judge-supplied total it is trusted as-is (the upstream client precomputes
// it); otherwise the total is the weighted mean of the judge's criterion
// fractions, scaled to the rubric's max possible score:
//
//	total = (Σ (points_i / max_i) × weight_i / Σ weight_i) × maxPossible
//
// summed over criteria present in that judge's record. Boolean criteria
// contribute their full max when true and zero when false. Without a rubric
// the fallback is a plain unweighted sum. Aggregation never fails on
// malformed-but-persisted data; values that cannot contribute are skipped.
package aggregate

import (
	"math"
	"sort"

	"github.com/ngage-io/tally/internal/domain/model"
)

// Method enumerates how per-judge totals are combined into the average.
type Method string

const (
	// MethodMean is the arithmetic mean of all judge totals.
	MethodMean Method = "mean"
	// MethodMedian is the middle judge total when sorted.
	MethodMedian Method = "median"
	// MethodTrimmedMean drops a fraction of totals from both ends first.
	MethodTrimmedMean Method = "trimmed_mean"
)

// String returns the string representation of the method.
func (m Method) String() string { return string(m) }

// Aggregator computes AggregatedScore summaries. It is pure and safe for
// concurrent use; construct one per rubric (or one rubric-less instance)
// and share it.
type Aggregator struct {
	method       Method
	trimFraction float64
	rubric       *model.ScoringRubric
}

// New constructs an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		method:       MethodMean,
		trimFraction: 0.1, // only used by trimmed_mean
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Aggregate combines all score records for one submission. An empty input
// yields a zero-judge summary, which is the valid "not yet scored" state.
func (a *Aggregator) Aggregate(submissionID string, scores []model.Score) model.AggregatedScore {
	out := model.AggregatedScore{
		SubmissionID:     submissionID,
		CriteriaAverages: map[string]float64{},
	}
	if len(scores) == 0 {
		return out
	}

	totals := make([]float64, 0, len(scores))
	for _, s := range scores {
		totals = append(totals, a.judgeTotal(s))
	}

	out.JudgeCount = len(scores)
	out.IndividualScores = scores
	out.AverageScore = a.combine(totals)
	out.ScoreRange = scoreRange(totals)
	out.CriteriaAverages = a.criteriaAverages(scores)
	return out
}

// judgeTotal resolves one record to a single total.
func (a *Aggregator) judgeTotal(s model.Score) float64 {
	if s.TotalScore != nil {
		return *s.TotalScore
	}
	if a.rubric != nil {
		return a.weightedTotal(s.Values)
	}
	var sum float64
	for _, v := range s.Values {
		if v.Kind == model.BoolKind {
			if v.Bool {
				sum++
			}
			continue
		}
		sum += v.Number
	}
	return sum
}

func (a *Aggregator) weightedTotal(values map[string]model.CriterionValue) float64 {
	var weighted, weights float64
	for _, c := range a.rubric.Criteria {
		v, ok := values[c.Key]
		if !ok {
			continue
		}
		if c.MaxScore <= 0 || c.Weight <= 0 {
			continue
		}
		weighted += v.Points(c) / c.MaxScore * c.Weight
		weights += c.Weight
	}
	if weights == 0 {
		return 0
	}
	return weighted / weights * a.rubric.MaxPossibleScore()
}

// combine applies the configured aggregation method over judge totals.
func (a *Aggregator) combine(totals []float64) float64 {
	switch a.method {
	case MethodMedian:
		return median(totals)
	case MethodTrimmedMean:
		return trimmedMean(totals, a.trimFraction)
	default:
		return mean(totals)
	}
}

// criteriaAverages averages each key over the judges that scored it;
// criteria absent from a record are excluded, never treated as zero.
func (a *Aggregator) criteriaAverages(scores []model.Score) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, s := range scores {
		for key, v := range s.Values {
			sums[key] += a.criterionPoints(key, v)
			counts[key]++
		}
	}
	averages := make(map[string]float64, len(sums))
	for key, sum := range sums {
		averages[key] = sum / float64(counts[key])
	}
	return averages
}

func (a *Aggregator) criterionPoints(key string, v model.CriterionValue) float64 {
	if v.Kind != model.BoolKind {
		return v.Number
	}
	if a.rubric != nil {
		if c, ok := a.rubric.Criterion(key); ok {
			return v.Points(c)
		}
	}
	if v.Bool {
		return 1
	}
	return 0
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func trimmedMean(xs []float64, fraction float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	trim := int(math.Floor(float64(len(sorted)) * fraction))
	if trim*2 >= len(sorted) {
		return median(sorted)
	}
	return mean(sorted[trim : len(sorted)-trim])
}

func scoreRange(totals []float64) model.ScoreRange {
	r := model.ScoreRange{Min: totals[0], Max: totals[0]}
	for _, t := range totals[1:] {
		r.Min = math.Min(r.Min, t)
		r.Max = math.Max(r.Max, t)
	}
	return r
}
