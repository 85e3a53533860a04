package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

type responseKey struct {
	activityID uuid.UUID
	studentID  uuid.UUID
}

// ResponseStore is an in-memory submission store enforcing the one
// response per (activity, student) rule the way the database unique
// constraint does.
type ResponseStore struct {
	mu        sync.RWMutex
	responses map[responseKey]model.Response

	Users *UserStore
}

// NewResponseStore creates an empty ResponseStore resolving student
// names against the given user store.
func NewResponseStore(users *UserStore) *ResponseStore {
	return &ResponseStore{
		responses: make(map[responseKey]model.Response),
		Users:     users,
	}
}

// Create stores a submission. A second submission for the same
// (activity, student) pair returns domain.ErrConflict.
func (s *ResponseStore) Create(ctx context.Context, r *model.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := responseKey{r.ActivityID, r.StudentID}
	if _, taken := s.responses[key]; taken {
		return domain.ErrConflict
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StudentName == "" && s.Users != nil {
		if u, err := s.Users.GetByID(ctx, r.StudentID); err == nil {
			r.StudentName = u.Name
		}
	}
	s.responses[key] = *r
	return nil
}

// GetByActivityAndStudent retrieves a student's submission for an
// activity.
func (s *ResponseStore) GetByActivityAndStudent(_ context.Context, activityID, studentID uuid.UUID) (*model.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.responses[responseKey{activityID, studentID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := r
	return &out, nil
}

// ListByActivity retrieves every submission for an activity, best score
// first and earliest submission breaking ties.
func (s *ResponseStore) ListByActivity(_ context.Context, activityID uuid.UUID) ([]model.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Response
	for key, r := range s.responses {
		if key.activityID == activityID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}
