package model

import "time"

// Submission ties one team's entry to an event. Only the fields the
// leaderboard builder needs are modeled here; submission content lives
// with the upstream platform.
type Submission struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	TeamID      string    `json:"team_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Team identifies a competing team.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LeaderboardEntry is one team's ranked standing within an event.
type LeaderboardEntry struct {
	TeamID          string             `json:"team_id"`
	TeamName        string             `json:"team_name"`
	Position        int                `json:"position"`
	AverageScore    float64            `json:"average_score"`
	SubmissionCount int                `json:"submission_count"`
	CriteriaScores  map[string]float64 `json:"criteria_scores,omitempty"`
}

// LeaderboardMetadata carries aggregate counts for the whole event.
type LeaderboardMetadata struct {
	TotalSubmissions int `json:"total_submissions"`
	TotalScores      int `json:"total_scores"`
}

// Leaderboard is the full ranked view for one event. CalculatedAt is
// advisory; callers must not assume any staleness bound.
type Leaderboard struct {
	EventID      string              `json:"event_id"`
	Entries      []LeaderboardEntry  `json:"entries"`
	TeamCount    int                 `json:"team_count"`
	Metadata     LeaderboardMetadata `json:"metadata"`
	CalculatedAt time.Time           `json:"calculated_at"`
}

// HasEntries reports whether any team has a ranked standing.
func (l Leaderboard) HasEntries() bool { return len(l.Entries) > 0 }
