package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classcast/classcast-backend/internal/model"
)

// CheckpointRepository handles transcript checkpoint data access.
// Checkpoints are append-only; there is no update or delete path.
type CheckpointRepository struct {
	pool *pgxpool.Pool
}

// NewCheckpointRepository creates a new CheckpointRepository.
func NewCheckpointRepository(pool *pgxpool.Pool) *CheckpointRepository {
	return &CheckpointRepository{pool: pool}
}

// Create appends a transcript snapshot.
func (r *CheckpointRepository) Create(ctx context.Context, cp *model.Checkpoint) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO checkpoints (session_id, snapshot_text, word_count, reason)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		cp.SessionID, cp.SnapshotText, cp.WordCount, cp.Reason,
	).Scan(&cp.ID, &cp.CreatedAt)
}

// ListBySession retrieves a session's checkpoints in creation order.
func (r *CheckpointRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Checkpoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, snapshot_text, word_count, reason, created_at
		 FROM checkpoints
		 WHERE session_id = $1
		 ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkpoints []model.Checkpoint
	for rows.Next() {
		var cp model.Checkpoint
		if err := rows.Scan(&cp.ID, &cp.SessionID, &cp.SnapshotText, &cp.WordCount, &cp.Reason, &cp.CreatedAt); err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, rows.Err()
}
