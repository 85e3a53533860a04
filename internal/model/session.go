package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates live session states.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusPaused SessionStatus = "paused"
	SessionStatusEnded  SessionStatus = "ended"
)

// Session is a teacher-owned container scoping a sequence of activities
// to one lesson or presentation round. It accumulates the lesson's
// source material (transcript) which checkpoints snapshot.
type Session struct {
	ID         uuid.UUID     `json:"id"`
	SubjectID  *uuid.UUID    `json:"subject_id,omitempty"` // nil for address-coded presentation sessions
	OwnerID    uuid.UUID     `json:"owner_id"`
	Title      string        `json:"title"`
	Transcript string        `json:"transcript,omitempty"`
	Status     SessionStatus `json:"status"`
	// AddressCode is a short human-typeable token for presentation-style
	// sessions; viewers join with the code instead of an enrollment.
	AddressCode *string    `json:"address_code,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WordCount counts whitespace-separated units in the transcript.
func (s *Session) WordCount() int {
	if s.Transcript == "" {
		return 0
	}
	return len(strings.Fields(s.Transcript))
}

// IsEnded reports whether the session reached its terminal state.
func (s *Session) IsEnded() bool {
	return s.Status == SessionStatusEnded
}

// OpenSessionRequest is the payload for opening a lesson session.
type OpenSessionRequest struct {
	SubjectID uuid.UUID `json:"subject_id" binding:"required"`
	Title     string    `json:"title" binding:"omitempty,max=200"`
}

// UpdateTranscriptRequest is the autosave payload for the accumulating
// transcript.
type UpdateTranscriptRequest struct {
	Transcript *string `json:"transcript" binding:"required"`
	Title      string  `json:"title" binding:"omitempty,max=200"`
}
