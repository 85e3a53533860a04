package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classcast/classcast-backend/internal/model"
)

// CheckpointStore is an in-memory append-only checkpoint store.
type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[uuid.UUID]model.Checkpoint
}

// NewCheckpointStore creates an empty CheckpointStore.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{checkpoints: make(map[uuid.UUID]model.Checkpoint)}
}

// Create appends a transcript snapshot.
func (s *CheckpointStore) Create(_ context.Context, cp *model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.checkpoints[cp.ID] = *cp
	return nil
}

// ListBySession retrieves a session's checkpoints in creation order.
func (s *CheckpointStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Checkpoint
	for _, cp := range s.checkpoints {
		if cp.SessionID == sessionID {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
