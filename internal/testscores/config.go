package testscores

import "time"

// Config holds configuration for the scoring test
type Config struct {
	BaseURL            string        // Base URL of the service
	EventID            string        // Event to score against
	NumTeams           int           // Number of teams to register
	SubmissionsPerTeam int           // Submissions registered per team
	NumJudges          int           // Judges scoring every submission
	TopN               int           // Number of top entries to fetch
	Workers            int           // Number of concurrent workers
	Timeout            time.Duration // HTTP request timeout
	OutputFile         string        // Output file for generated scores
	LogFile            string        // Log file for test output
	Verbose            bool          // Enable verbose logging
}

// ScorePayload is one judge score as posted to /scores
type ScorePayload struct {
	SubmissionID string   `json:"submission_id"`
	JudgeID      string   `json:"judge_id"`
	EventID      string   `json:"event_id"`
	Comments     string   `json:"comments,omitempty"`
	TotalScore   *float64 `json:"total_score"`
}

// TeamPayload registers one team via /teams
type TeamPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubmissionPayload registers one submission via /submissions
type SubmissionPayload struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	TeamID  string `json:"team_id"`
}

// Entry represents one leaderboard entry as returned by the service
type Entry struct {
	TeamID          string  `json:"team_id"`
	TeamName        string  `json:"team_name"`
	Position        int     `json:"position"`
	AverageScore    float64 `json:"average_score"`
	SubmissionCount int     `json:"submission_count"`
}

// LeaderboardResponse is the /leaderboard body
type LeaderboardResponse struct {
	EventID   string  `json:"event_id"`
	Entries   []Entry `json:"entries"`
	TeamCount int     `json:"team_count"`
}

// AggregateResponse is the /submissions/{id}/score body
type AggregateResponse struct {
	SubmissionID string  `json:"submission_id"`
	JudgeCount   int     `json:"judge_count"`
	AverageScore float64 `json:"average_score"`
}

// AckResponse represents the response from score submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds test statistics
type Stats struct {
	TeamsRegistered      int
	SubmissionsGenerated int
	ScoresGenerated      int
	ScoresSubmitted      int
	ScoresSuccessful     int
	ScoresDuplicate      int
	ScoresFailed         int
	AggregatesRetrieved  int
	LeaderboardEntries   int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
