package model

import (
	"time"

	"github.com/google/uuid"
)

// Checkpoint is an immutable snapshot of the session's accumulating
// source material, taken when an activity is created. Used for audit
// trails and to regenerate an activity from the same base text.
type Checkpoint struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	SnapshotText string    `json:"snapshot_text"`
	WordCount    int       `json:"word_count"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}
