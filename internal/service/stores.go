package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/classcast/classcast-backend/internal/model"
)

// Store interfaces consumed by the engine services. The pgx
// implementations live in internal/repository; internal/repository/memory
// provides in-memory equivalents for tests. Implementations return
// domain.ErrNotFound for missing rows and domain.ErrConflict for
// unique-constraint violations.

// UserStore provides account lookup for authentication.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SubjectStore manages subjects and their enrollment roster.
type SubjectStore interface {
	Create(ctx context.Context, s *model.Subject) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subject, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Subject, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Subject, error)
	Enroll(ctx context.Context, subjectID, studentID uuid.UUID) error
	IsEnrolled(ctx context.Context, subjectID, studentID uuid.UUID) (bool, error)
	// ListRoster returns every enrolled student in name order.
	ListRoster(ctx context.Context, subjectID uuid.UUID) ([]model.RosterEntry, error)
	CountEnrolled(ctx context.Context, subjectID uuid.UUID) (int, error)
}

// SessionStore manages broadcast sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	// GetOpenByOwnerAndSubject returns the owner's non-ended session for a
	// subject, if any. Backs the idempotent open.
	GetOpenByOwnerAndSubject(ctx context.Context, ownerID, subjectID uuid.UUID) (*model.Session, error)
	// GetOpenPresentationByOwner returns the owner's non-ended
	// address-coded session, if any.
	GetOpenPresentationByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Session, error)
	GetByAddressCode(ctx context.Context, code string) (*model.Session, error)
	AddressCodeExists(ctx context.Context, code string) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus, endedAt *time.Time) error
	UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string, title *string, updatedAt time.Time) error
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.Session, error)
}

// ActivityStore manages time-boxed activities. Status writes are
// conditional on the source state so transitions stay monotonic under
// concurrency; the bool result reports whether the transition happened.
type ActivityStore interface {
	Create(ctx context.Context, a *model.Activity) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Activity, error)
	// MarkBroadcast moves waiting → active, stamping broadcast time,
	// deadline and consumer visibility.
	MarkBroadcast(ctx context.Context, id uuid.UUID, broadcastAt time.Time, deadline *time.Time) (bool, error)
	// MarkEnded moves waiting/active → ended.
	MarkEnded(ctx context.Context, id uuid.UUID) (bool, error)
	SetVisible(ctx context.Context, id uuid.UUID, visible bool) error
	// EndAllOpenBySession force-ends every non-ended activity of a
	// session and returns the ones that changed.
	EndAllOpenBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Activity, error)
	// FindVisibleLiveBySubject returns the currently visible active
	// activity for a subject's sessions, if any. Callers must reap before
	// trusting its status.
	FindVisibleLiveBySubject(ctx context.Context, subjectID uuid.UUID) (*model.Activity, error)
	// FindLatestSharedSummary returns the most recent consumer-visible
	// summary for a subject, regardless of liveness.
	FindLatestSharedSummary(ctx context.Context, subjectID uuid.UUID) (*model.Activity, error)
	// ListOverdue returns active activities whose deadline is at or
	// before the given instant. Used by the background sweeper.
	ListOverdue(ctx context.Context, now time.Time) ([]model.Activity, error)
}

// CheckpointStore appends immutable transcript snapshots.
type CheckpointStore interface {
	Create(ctx context.Context, cp *model.Checkpoint) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Checkpoint, error)
}

// ResponseStore manages student submissions. Create must surface the
// storage-level (activity_id, student_id) unique violation as
// domain.ErrConflict — that signal, not a prior existence check, is the
// authoritative duplicate detector.
type ResponseStore interface {
	Create(ctx context.Context, r *model.Response) error
	GetByActivityAndStudent(ctx context.Context, activityID, studentID uuid.UUID) (*model.Response, error)
	// ListByActivity returns responses with student names resolved,
	// ordered score desc, submitted_at asc.
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]model.Response, error)
}
