package aggregate

import "github.com/ngage-io/tally/internal/domain/model"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithMethod sets the aggregation method for combining judge totals.
func WithMethod(m Method) Option {
	return func(a *Aggregator) {
		switch m {
		case MethodMean, MethodMedian, MethodTrimmedMean:
			a.method = m
		}
	}
}

// WithTrimFraction sets the fraction trimmed from each end for trimmed_mean.
func WithTrimFraction(f float64) Option {
	return func(a *Aggregator) {
		if f >= 0 && f < 0.5 {
			a.trimFraction = f
		}
	}
}

// WithRubric enables weighted per-judge totals using the rubric's
// criterion weights and bounds.
func WithRubric(r model.ScoringRubric) Option {
	return func(a *Aggregator) {
		a.rubric = &r
	}
}
