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

const activityColumns = `id, session_id, checkpoint_id, kind, title, payload, status, visible_to_consumers, time_limit_seconds, broadcast_at, deadline, created_at`

// ActivityRepository handles activity data access. Status transitions
// are guarded in SQL so they stay monotonic under concurrent writers.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func scanActivity(row pgx.Row) (*model.Activity, error) {
	a := &model.Activity{}
	err := row.Scan(&a.ID, &a.SessionID, &a.CheckpointID, &a.Kind, &a.Title, &a.Payload,
		&a.Status, &a.VisibleToConsumers, &a.TimeLimitSeconds, &a.BroadcastAt, &a.Deadline, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectActivities(rows pgx.Rows) ([]model.Activity, error) {
	defer rows.Close()
	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.SessionID, &a.CheckpointID, &a.Kind, &a.Title, &a.Payload,
			&a.Status, &a.VisibleToConsumers, &a.TimeLimitSeconds, &a.BroadcastAt, &a.Deadline, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// Create inserts a new activity in waiting state.
func (r *ActivityRepository) Create(ctx context.Context, a *model.Activity) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO activities (session_id, checkpoint_id, kind, title, payload, status, visible_to_consumers, time_limit_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		a.SessionID, a.CheckpointID, a.Kind, a.Title, a.Payload, a.Status, a.VisibleToConsumers, a.TimeLimitSeconds,
	).Scan(&a.ID, &a.CreatedAt)
}

// GetByID retrieves an activity by primary key.
func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = $1`, id))
}

// ListBySession retrieves all activities of a session, newest first.
func (r *ActivityRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+activityColumns+`
		 FROM activities
		 WHERE session_id = $1
		 ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}

// MarkBroadcast moves waiting → active, stamping broadcast time and
// deadline and making the activity visible to consumers. Returns false
// when the activity was not in waiting state.
func (r *ActivityRepository) MarkBroadcast(ctx context.Context, id uuid.UUID, broadcastAt time.Time, deadline *time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE activities
		 SET status = 'active', broadcast_at = $1, deadline = $2, visible_to_consumers = TRUE
		 WHERE id = $3 AND status = 'waiting'`,
		broadcastAt, deadline, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkEnded moves waiting/active → ended. Returns false when the
// activity had already ended.
func (r *ActivityRepository) MarkEnded(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE activities
		 SET status = 'ended'
		 WHERE id = $1 AND status <> 'ended'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetVisible flips consumer visibility (summary sharing).
func (r *ActivityRepository) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE activities SET visible_to_consumers = $1 WHERE id = $2`, visible, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EndAllOpenBySession force-ends every non-ended activity of a session
// and returns the rows that changed, so callers can publish ended
// events for each.
func (r *ActivityRepository) EndAllOpenBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE activities
		 SET status = 'ended'
		 WHERE session_id = $1 AND status <> 'ended'
		 RETURNING `+activityColumns, sessionID)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}

// FindVisibleLiveBySubject returns the currently visible active activity
// across the subject's sessions. The caller reaps before trusting the
// stored status.
func (r *ActivityRepository) FindVisibleLiveBySubject(ctx context.Context, subjectID uuid.UUID) (*model.Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx,
		`SELECT a.id, a.session_id, a.checkpoint_id, a.kind, a.title, a.payload, a.status,
		        a.visible_to_consumers, a.time_limit_seconds, a.broadcast_at, a.deadline, a.created_at
		 FROM activities a
		 JOIN sessions s ON s.id = a.session_id
		 WHERE s.subject_id = $1 AND a.status = 'active' AND a.visible_to_consumers
		 ORDER BY a.broadcast_at DESC
		 LIMIT 1`, subjectID))
}

// FindLatestSharedSummary returns the most recent consumer-visible
// summary for a subject, live or not.
func (r *ActivityRepository) FindLatestSharedSummary(ctx context.Context, subjectID uuid.UUID) (*model.Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx,
		`SELECT a.id, a.session_id, a.checkpoint_id, a.kind, a.title, a.payload, a.status,
		        a.visible_to_consumers, a.time_limit_seconds, a.broadcast_at, a.deadline, a.created_at
		 FROM activities a
		 JOIN sessions s ON s.id = a.session_id
		 WHERE s.subject_id = $1 AND a.kind = 'summary' AND a.visible_to_consumers
		 ORDER BY a.created_at DESC
		 LIMIT 1`, subjectID))
}

// ListOverdue returns active activities whose deadline has passed.
func (r *ActivityRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+activityColumns+`
		 FROM activities
		 WHERE status = 'active' AND deadline IS NOT NULL AND deadline <= $1`, now)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}
