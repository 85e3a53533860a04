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

// ResponseRepository handles student submission data access. The
// UNIQUE (activity_id, student_id) constraint is the authoritative
// duplicate detector; Create surfaces it as domain.ErrConflict.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// Create inserts a submission. Returns domain.ErrConflict when the
// student has already answered this activity.
func (r *ResponseRepository) Create(ctx context.Context, resp *model.Response) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO responses (activity_id, student_id, payload, score, total, percentage, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		resp.ActivityID, resp.StudentID, resp.Payload, resp.Score, resp.Total, resp.Percentage, resp.SubmittedAt,
	).Scan(&resp.ID)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// GetByActivityAndStudent retrieves a student's submission for an
// activity, if any.
func (r *ResponseRepository) GetByActivityAndStudent(ctx context.Context, activityID, studentID uuid.UUID) (*model.Response, error) {
	resp := &model.Response{}
	err := r.pool.QueryRow(ctx,
		`SELECT r.id, r.activity_id, r.student_id, u.name, r.payload, r.score, r.total, r.percentage, r.submitted_at
		 FROM responses r
		 JOIN users u ON u.id = r.student_id
		 WHERE r.activity_id = $1 AND r.student_id = $2`,
		activityID, studentID,
	).Scan(&resp.ID, &resp.ActivityID, &resp.StudentID, &resp.StudentName,
		&resp.Payload, &resp.Score, &resp.Total, &resp.Percentage, &resp.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListByActivity retrieves every submission for an activity with
// student names resolved, best score first and earliest submission
// breaking ties.
func (r *ResponseRepository) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]model.Response, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.activity_id, r.student_id, u.name, r.payload, r.score, r.total, r.percentage, r.submitted_at
		 FROM responses r
		 JOIN users u ON u.id = r.student_id
		 WHERE r.activity_id = $1
		 ORDER BY r.score DESC, r.submitted_at ASC`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.Response
	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.ID, &resp.ActivityID, &resp.StudentID, &resp.StudentName,
			&resp.Payload, &resp.Score, &resp.Total, &resp.Percentage, &resp.SubmittedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}
