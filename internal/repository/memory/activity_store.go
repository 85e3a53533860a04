package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

// ActivityStore is an in-memory activity store. Sessions resolves the
// owning session for subject-scoped lookups.
type ActivityStore struct {
	mu         sync.RWMutex
	activities map[uuid.UUID]model.Activity

	Sessions *SessionStore
}

// NewActivityStore creates an empty ActivityStore resolving sessions
// against the given session store.
func NewActivityStore(sessions *SessionStore) *ActivityStore {
	return &ActivityStore{
		activities: make(map[uuid.UUID]model.Activity),
		Sessions:   sessions,
	}
}

// Create stores a new activity.
func (s *ActivityStore) Create(_ context.Context, a *model.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	s.activities[a.ID] = *a
	return nil
}

// GetByID retrieves an activity by ID.
func (s *ActivityStore) GetByID(_ context.Context, id uuid.UUID) (*model.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := a
	return &out, nil
}

// ListBySession retrieves a session's activities, newest first.
func (s *ActivityStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Activity
	for _, a := range s.activities {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MarkBroadcast moves waiting → active.
func (s *ActivityStore) MarkBroadcast(_ context.Context, id uuid.UUID, broadcastAt time.Time, deadline *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok || a.Status != model.ActivityStatusWaiting {
		return false, nil
	}
	a.Status = model.ActivityStatusActive
	at := broadcastAt
	a.BroadcastAt = &at
	a.Deadline = deadline
	a.VisibleToConsumers = true
	s.activities[id] = a
	return true, nil
}

// MarkEnded moves waiting/active → ended.
func (s *ActivityStore) MarkEnded(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok || a.Status == model.ActivityStatusEnded {
		return false, nil
	}
	a.Status = model.ActivityStatusEnded
	s.activities[id] = a
	return true, nil
}

// SetVisible flips consumer visibility.
func (s *ActivityStore) SetVisible(_ context.Context, id uuid.UUID, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.VisibleToConsumers = visible
	s.activities[id] = a
	return nil
}

// EndAllOpenBySession force-ends every non-ended activity of a session
// and returns the ones that changed.
func (s *ActivityStore) EndAllOpenBySession(_ context.Context, sessionID uuid.UUID) ([]model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []model.Activity
	for id, a := range s.activities {
		if a.SessionID != sessionID || a.Status == model.ActivityStatusEnded {
			continue
		}
		a.Status = model.ActivityStatusEnded
		s.activities[id] = a
		changed = append(changed, a)
	}
	return changed, nil
}

// FindVisibleLiveBySubject returns the latest visible active activity
// across the subject's sessions.
func (s *ActivityStore) FindVisibleLiveBySubject(ctx context.Context, subjectID uuid.UUID) (*model.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.Activity
	for _, a := range s.activities {
		if a.Status != model.ActivityStatusActive || !a.VisibleToConsumers {
			continue
		}
		if !s.belongsToSubject(ctx, a.SessionID, subjectID) {
			continue
		}
		candidate := a
		if latest == nil || after(candidate.BroadcastAt, latest.BroadcastAt) {
			latest = &candidate
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// FindLatestSharedSummary returns the most recent consumer-visible
// summary for a subject, live or not.
func (s *ActivityStore) FindLatestSharedSummary(ctx context.Context, subjectID uuid.UUID) (*model.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.Activity
	for _, a := range s.activities {
		if a.Kind != model.ActivityKindSummary || !a.VisibleToConsumers {
			continue
		}
		if !s.belongsToSubject(ctx, a.SessionID, subjectID) {
			continue
		}
		candidate := a
		if latest == nil || candidate.CreatedAt.After(latest.CreatedAt) {
			latest = &candidate
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// ListOverdue returns active activities whose deadline has passed.
func (s *ActivityStore) ListOverdue(_ context.Context, now time.Time) ([]model.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Activity
	for _, a := range s.activities {
		if a.Status == model.ActivityStatusActive && a.Deadline != nil && !a.Deadline.After(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *ActivityStore) belongsToSubject(ctx context.Context, sessionID, subjectID uuid.UUID) bool {
	if s.Sessions == nil {
		return false
	}
	session, err := s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return false
	}
	return session.SubjectID != nil && *session.SubjectID == subjectID
}

func after(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
