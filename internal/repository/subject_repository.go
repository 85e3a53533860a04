package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

// SubjectRepository handles subject and enrollment data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name, teacher_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		s.Name, s.TeacherID,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByID retrieves a subject by primary key.
func (r *SubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, teacher_id, created_at
		 FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.TeacherID, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByTeacher retrieves all subjects owned by a teacher.
func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Subject, error) {
	return r.list(ctx,
		`SELECT id, name, teacher_id, created_at
		 FROM subjects WHERE teacher_id = $1
		 ORDER BY created_at DESC`, teacherID)
}

// ListByStudent retrieves all subjects a student is enrolled in.
func (r *SubjectRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Subject, error) {
	return r.list(ctx,
		`SELECT s.id, s.name, s.teacher_id, s.created_at
		 FROM subjects s
		 JOIN enrollments e ON e.subject_id = s.id
		 WHERE e.student_id = $1
		 ORDER BY s.name ASC`, studentID)
}

func (r *SubjectRepository) list(ctx context.Context, query string, args ...any) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.TeacherID, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Enroll adds a student to a subject's roster. Enrolling twice is a
// no-op.
func (r *SubjectRepository) Enroll(ctx context.Context, subjectID, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (subject_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (subject_id, student_id) DO NOTHING`,
		subjectID, studentID)
	return err
}

// IsEnrolled reports whether a student belongs to a subject's roster.
func (r *SubjectRepository) IsEnrolled(ctx context.Context, subjectID, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE subject_id = $1 AND student_id = $2
		 )`, subjectID, studentID,
	).Scan(&exists)
	return exists, err
}

// ListRoster returns every enrolled student, name ascending.
func (r *SubjectRepository) ListRoster(ctx context.Context, subjectID uuid.UUID) ([]model.RosterEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name
		 FROM enrollments e
		 JOIN users u ON u.id = e.student_id
		 WHERE e.subject_id = $1
		 ORDER BY u.name ASC`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []model.RosterEntry
	for rows.Next() {
		var entry model.RosterEntry
		if err := rows.Scan(&entry.StudentID, &entry.Name); err != nil {
			return nil, err
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// CountEnrolled returns the roster size for a subject.
func (r *SubjectRepository) CountEnrolled(ctx context.Context, subjectID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE subject_id = $1`, subjectID,
	).Scan(&count)
	return count, err
}
