package testscores

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusCreated  = 201
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	ProcessingDrainDelay = 5 * time.Second
	PercentageMultiplier = 100
	ScoreEpsilon         = 1e-6
)
