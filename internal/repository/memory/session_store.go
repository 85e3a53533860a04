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

// SessionStore is an in-memory broadcast session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]model.Session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]model.Session)}
}

// Create stores a new session. Duplicate address codes return
// domain.ErrConflict.
func (s *SessionStore) Create(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.AddressCode != nil {
		for _, existing := range s.sessions {
			if existing.AddressCode != nil && *existing.AddressCode == *session.AddressCode {
				return domain.ErrConflict
			}
		}
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := time.Now()
	if session.StartedAt.IsZero() {
		session.StartedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}
	s.sessions[session.ID] = *session
	return nil
}

// GetByID retrieves a session by ID.
func (s *SessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := session
	return &out, nil
}

// GetOpenByOwnerAndSubject finds the owner's non-ended session for a
// subject.
func (s *SessionStore) GetOpenByOwnerAndSubject(_ context.Context, ownerID, subjectID uuid.UUID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.Session
	for _, session := range s.sessions {
		if session.OwnerID != ownerID || session.Status == model.SessionStatusEnded {
			continue
		}
		if session.SubjectID == nil || *session.SubjectID != subjectID {
			continue
		}
		candidate := session
		if latest == nil || candidate.StartedAt.After(latest.StartedAt) {
			latest = &candidate
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// GetOpenPresentationByOwner finds the owner's non-ended address-coded
// session.
func (s *SessionStore) GetOpenPresentationByOwner(_ context.Context, ownerID uuid.UUID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.Session
	for _, session := range s.sessions {
		if session.OwnerID != ownerID || session.Status == model.SessionStatusEnded || session.AddressCode == nil {
			continue
		}
		candidate := session
		if latest == nil || candidate.StartedAt.After(latest.StartedAt) {
			latest = &candidate
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// GetByAddressCode retrieves a session by its shareable code.
func (s *SessionStore) GetByAddressCode(_ context.Context, code string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.AddressCode != nil && *session.AddressCode == code {
			out := session
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// AddressCodeExists reports whether a code is already taken.
func (s *SessionStore) AddressCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.AddressCode != nil && *session.AddressCode == code {
			return true, nil
		}
	}
	return false, nil
}

// UpdateStatus transitions a session's status.
func (s *SessionStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.SessionStatus, endedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.Status = status
	if endedAt != nil {
		session.EndedAt = endedAt
	}
	session.UpdatedAt = time.Now()
	s.sessions[id] = session
	return nil
}

// UpdateTranscript saves the accumulating transcript.
func (s *SessionStore) UpdateTranscript(_ context.Context, id uuid.UUID, transcript string, title *string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.Transcript = transcript
	if title != nil {
		session.Title = *title
	}
	session.UpdatedAt = updatedAt
	s.sessions[id] = session
	return nil
}

// ListBySubject retrieves all sessions for a subject, newest first.
func (s *SessionStore) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Session
	for _, session := range s.sessions {
		if session.SubjectID != nil && *session.SubjectID == subjectID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}
