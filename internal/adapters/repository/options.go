package repository

import "time"

// settings holds configuration shared by the in-memory stores.
type settings struct {
	now func() time.Time
}

// Option applies a configuration option to an in-memory store.
type Option func(*settings)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func newSettings(opts ...Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
