package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject is the broadcast scope: activities reach the students enrolled
// in the session's subject.
type Subject struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeacherID uuid.UUID `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RosterEntry is one eligible consumer of a broadcast, independent of
// whether they have responded.
type RosterEntry struct {
	StudentID uuid.UUID `json:"student_id"`
	Name      string    `json:"name"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=2,max=200"`
}

// EnrollStudentRequest adds a student to a subject's roster by email.
type EnrollStudentRequest struct {
	Email string `json:"email" binding:"required,email"`
}
