package leaderboard

import "time"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithCombineMode sets how multiple submissions per team are folded.
func WithCombineMode(mode CombineMode) Option {
	return func(b *Builder) {
		switch mode {
		case CombineAverage, CombineBest:
			b.combine = mode
		}
	}
}

// WithEpsilon sets the precision for average-score tie comparison.
func WithEpsilon(eps float64) Option {
	return func(b *Builder) {
		if eps > 0 {
			b.epsilon = eps
		}
	}
}

// WithClock overrides the CalculatedAt time source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}
