package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

const sessionColumns = `id, subject_id, owner_id, title, transcript, status, address_code, started_at, ended_at, updated_at`

// SessionRepository handles broadcast session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.Session, error) {
	s := &model.Session{}
	err := row.Scan(&s.ID, &s.SubjectID, &s.OwnerID, &s.Title, &s.Transcript,
		&s.Status, &s.AddressCode, &s.StartedAt, &s.EndedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (subject_id, owner_id, title, transcript, status, address_code)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, started_at, updated_at`,
		s.SubjectID, s.OwnerID, s.Title, s.Transcript, s.Status, s.AddressCode,
	).Scan(&s.ID, &s.StartedAt, &s.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// GetByID retrieves a session by primary key.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
}

// GetOpenByOwnerAndSubject finds the owner's non-ended session for a
// subject. Backs the idempotent open: repeated opens return this row
// instead of creating duplicates.
func (r *SessionRepository) GetOpenByOwnerAndSubject(ctx context.Context, ownerID, subjectID uuid.UUID) (*model.Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE owner_id = $1 AND subject_id = $2 AND status <> 'ended'
		 ORDER BY started_at DESC
		 LIMIT 1`, ownerID, subjectID))
}

// GetOpenPresentationByOwner finds the owner's non-ended address-coded
// session, if any.
func (r *SessionRepository) GetOpenPresentationByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE owner_id = $1 AND address_code IS NOT NULL AND status <> 'ended'
		 ORDER BY started_at DESC
		 LIMIT 1`, ownerID))
}

// GetByAddressCode retrieves a session by its shareable code.
func (r *SessionRepository) GetByAddressCode(ctx context.Context, code string) (*model.Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE address_code = $1`, code))
}

// AddressCodeExists reports whether a code is already taken.
func (r *SessionRepository) AddressCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE address_code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

// UpdateStatus transitions a session's status, stamping ended_at when
// provided.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus, endedAt *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET status = $1, ended_at = COALESCE($2, ended_at), updated_at = NOW()
		 WHERE id = $3`,
		status, endedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateTranscript saves the accumulating transcript (autosave path).
func (r *SessionRepository) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string, title *string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET transcript = $1, title = COALESCE($2, title), updated_at = $3
		 WHERE id = $4`,
		transcript, title, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBySubject retrieves all sessions for a subject, newest first.
func (r *SessionRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE subject_id = $1
		 ORDER BY started_at DESC`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.SubjectID, &s.OwnerID, &s.Title, &s.Transcript,
			&s.Status, &s.AddressCode, &s.StartedAt, &s.EndedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
