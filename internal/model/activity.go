package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityKind enumerates the broadcastable content kinds.
type ActivityKind string

const (
	ActivityKindQuiz         ActivityKind = "quiz"
	ActivityKindSummary      ActivityKind = "summary"
	ActivityKindOpenQuestion ActivityKind = "open_question"
	ActivityKindCustom       ActivityKind = "custom"
)

// ActivityStatus enumerates activity states. Transitions are monotonic:
// waiting → active → ended, never backwards.
type ActivityStatus string

const (
	ActivityStatusWaiting ActivityStatus = "waiting"
	ActivityStatusActive  ActivityStatus = "active"
	ActivityStatusEnded   ActivityStatus = "ended"
)

// Activity is a single time-boxed broadcastable content unit within a
// session.
type Activity struct {
	ID                 uuid.UUID       `json:"id"`
	SessionID          uuid.UUID       `json:"session_id"`
	CheckpointID       *uuid.UUID      `json:"checkpoint_id,omitempty"`
	Kind               ActivityKind    `json:"kind"`
	Title              string          `json:"title"`
	Payload            json.RawMessage `json:"payload,omitempty"`
	Status             ActivityStatus  `json:"status"`
	VisibleToConsumers bool            `json:"visible_to_consumers"`
	TimeLimitSeconds   *int            `json:"time_limit_seconds,omitempty"`
	BroadcastAt        *time.Time      `json:"broadcast_at,omitempty"`
	Deadline           *time.Time      `json:"deadline,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// IsLive reports whether the activity accepts responses at the given
// instant. Pure predicate: evaluating it never mutates state. Callers
// that need the stored status to agree with the clock must issue an
// explicit ReapExpired first.
func (a *Activity) IsLive(at time.Time) bool {
	if a.Status != ActivityStatusActive {
		return false
	}
	if a.Deadline == nil {
		return true
	}
	return at.Before(*a.Deadline)
}

// TimeRemaining returns the whole seconds left before the deadline at
// the given instant. Without a deadline it reports the configured limit.
// Never negative; exactly 0 at the deadline.
func (a *Activity) TimeRemaining(at time.Time) int {
	if a.Deadline == nil {
		if a.TimeLimitSeconds != nil {
			return *a.TimeLimitSeconds
		}
		return 0
	}
	remaining := int(a.Deadline.Sub(at).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ─── Payloads per kind ──────────────────────────────────────────────

// QuizQuestion is one question inside a quiz payload. Correct holds the
// index of the right option and must never reach students.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

// QuizPayload is the payload for quiz-kind activities.
type QuizPayload struct {
	Questions []QuizQuestion `json:"questions"`
}

// SummaryPayload is the payload for summary-kind activities.
type SummaryPayload struct {
	SummaryText string `json:"summary_text"`
}

// OpenQuestionPayload is the payload for open-question activities.
type OpenQuestionPayload struct {
	Question string `json:"question"`
}

// CustomPayload is free-form presentation content pushed to viewers.
type CustomPayload struct {
	ContentType string          `json:"content_type"`
	Data        json.RawMessage `json:"data"`
}

// Quiz decodes the payload as a quiz. Returns an empty quiz for a nil
// payload.
func (a *Activity) Quiz() (QuizPayload, error) {
	var q QuizPayload
	if len(a.Payload) == 0 {
		return q, nil
	}
	err := json.Unmarshal(a.Payload, &q)
	return q, err
}

// ConsumerView returns a copy safe to send to students: quiz payloads
// have the answer key stripped.
func (a *Activity) ConsumerView() (*Activity, error) {
	if a.Kind != ActivityKindQuiz {
		out := *a
		return &out, nil
	}

	quiz, err := a.Quiz()
	if err != nil {
		return nil, err
	}

	type studentQuestion struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	stripped := struct {
		Questions []studentQuestion `json:"questions"`
	}{Questions: make([]studentQuestion, len(quiz.Questions))}
	for i, q := range quiz.Questions {
		stripped.Questions[i] = studentQuestion{Question: q.Question, Options: q.Options}
	}

	raw, err := json.Marshal(stripped)
	if err != nil {
		return nil, err
	}

	out := *a
	out.Payload = raw
	return &out, nil
}

// ─── Requests ───────────────────────────────────────────────────────

// CreateActivityRequest is the payload for creating an activity inside a
// session.
type CreateActivityRequest struct {
	Kind             string          `json:"kind" binding:"required,oneof=quiz summary open_question custom"`
	Title            string          `json:"title" binding:"required,min=1,max=200"`
	Payload          json.RawMessage `json:"payload" binding:"required"`
	TimeLimitSeconds *int            `json:"time_limit_seconds" binding:"omitempty,min=10,max=3600"`
}

// GenerateQuizRequest asks the content generator for a quiz from the
// session transcript.
type GenerateQuizRequest struct {
	NumQuestions int  `json:"num_questions" binding:"omitempty,min=1,max=10"`
	TimeLimit    *int `json:"time_limit_seconds" binding:"omitempty,min=10,max=3600"`
}

// SendContentRequest pushes presentation content to an address-coded
// session's viewers.
type SendContentRequest struct {
	Type string          `json:"type" binding:"required,oneof=summary quiz podium ranking image video question blank"`
	Data json.RawMessage `json:"data" binding:"omitempty"`
}
