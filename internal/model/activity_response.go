package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Response is a consumer's single, immutable submission against one
// activity. At most one row exists per (activity, student); the storage
// unique constraint enforces it.
type Response struct {
	ID          uuid.UUID       `json:"id"`
	ActivityID  uuid.UUID       `json:"activity_id"`
	StudentID   uuid.UUID       `json:"student_id"`
	StudentName string          `json:"student_name,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	Score       int             `json:"score"`
	Total       int             `json:"total"`
	Percentage  float64         `json:"percentage"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// QuizAnswers is the response payload for quiz activities: question
// index → chosen option index.
type QuizAnswers struct {
	Answers map[string]int `json:"answers"`
}

// TextAnswer is the response payload for open questions.
type TextAnswer struct {
	Text string `json:"text"`
}

// SubmitResponseRequest is the student submission payload. Exactly one
// of Answers or Text applies, depending on the activity kind.
type SubmitResponseRequest struct {
	Answers map[string]int `json:"answers" binding:"omitempty"`
	Text    string         `json:"text" binding:"omitempty,max=5000"`
}

// ─── Derived views ──────────────────────────────────────────────────

// RankingStatus marks whether a roster member has responded yet.
type RankingStatus string

const (
	RankingStatusWaiting   RankingStatus = "waiting"
	RankingStatusSubmitted RankingStatus = "submitted"
)

// RankingEntry is one row of the live leaderboard. The full roster is
// always present: respondents ranked first, the rest in name order with
// no position.
type RankingEntry struct {
	StudentID   uuid.UUID     `json:"student_id"`
	Name        string        `json:"name"`
	Status      RankingStatus `json:"status"`
	Score       int           `json:"score"`
	Total       int           `json:"total"`
	Percentage  float64       `json:"percentage"`
	Position    *int          `json:"position,omitempty"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
}

// QuestionStat is the per-question correctness rate for reports.
type QuestionStat struct {
	Index       int     `json:"index"`
	Question    string  `json:"question"`
	CorrectRate float64 `json:"correct_rate"`
}

// ScoreDistribution buckets response percentages for reports.
type ScoreDistribution struct {
	AtLeast90 int `json:"at_least_90"`
	AtLeast70 int `json:"at_least_70"`
	AtLeast50 int `json:"at_least_50"`
	Below50   int `json:"below_50"`
}

// ActivityStats summarizes an activity for post-hoc reports.
type ActivityStats struct {
	ResponseCount     int               `json:"response_count"`
	EnrolledCount     int               `json:"enrolled_count"`
	ResponseRate      float64           `json:"response_rate"`
	AveragePercentage float64           `json:"average_percentage"`
	Distribution      ScoreDistribution `json:"distribution"`
	QuestionStats     []QuestionStat    `json:"question_stats,omitempty"`
}
