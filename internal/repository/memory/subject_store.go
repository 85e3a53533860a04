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

type enrollmentKey struct {
	subjectID uuid.UUID
	studentID uuid.UUID
}

// SubjectStore is an in-memory subject and enrollment store. Roster
// names resolve through the optional Users store when set.
type SubjectStore struct {
	mu          sync.RWMutex
	subjects    map[uuid.UUID]model.Subject
	enrollments map[enrollmentKey]struct{}

	Users *UserStore
}

// NewSubjectStore creates an empty SubjectStore resolving names against
// the given user store.
func NewSubjectStore(users *UserStore) *SubjectStore {
	return &SubjectStore{
		subjects:    make(map[uuid.UUID]model.Subject),
		enrollments: make(map[enrollmentKey]struct{}),
		Users:       users,
	}
}

// Create stores a new subject.
func (s *SubjectStore) Create(_ context.Context, subject *model.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if subject.ID == uuid.Nil {
		subject.ID = uuid.New()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now()
	}
	s.subjects[subject.ID] = *subject
	return nil
}

// GetByID retrieves a subject by ID.
func (s *SubjectStore) GetByID(_ context.Context, id uuid.UUID) (*model.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subject, ok := s.subjects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := subject
	return &out, nil
}

// ListByTeacher retrieves the teacher's subjects, newest first.
func (s *SubjectStore) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]model.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Subject
	for _, subject := range s.subjects {
		if subject.TeacherID == teacherID {
			out = append(out, subject)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListByStudent retrieves the subjects a student is enrolled in, name
// ascending.
func (s *SubjectStore) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Subject
	for key := range s.enrollments {
		if key.studentID != studentID {
			continue
		}
		if subject, ok := s.subjects[key.subjectID]; ok {
			out = append(out, subject)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Enroll adds a student to a subject's roster. Enrolling twice is a
// no-op.
func (s *SubjectStore) Enroll(_ context.Context, subjectID, studentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subjects[subjectID]; !ok {
		return domain.ErrNotFound
	}
	s.enrollments[enrollmentKey{subjectID, studentID}] = struct{}{}
	return nil
}

// IsEnrolled reports whether a student belongs to a subject's roster.
func (s *SubjectStore) IsEnrolled(_ context.Context, subjectID, studentID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.enrollments[enrollmentKey{subjectID, studentID}]
	return ok, nil
}

// ListRoster returns every enrolled student, name ascending.
func (s *SubjectStore) ListRoster(_ context.Context, subjectID uuid.UUID) ([]model.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roster []model.RosterEntry
	for key := range s.enrollments {
		if key.subjectID != subjectID {
			continue
		}
		entry := model.RosterEntry{StudentID: key.studentID}
		if s.Users != nil {
			if u, err := s.Users.GetByID(context.Background(), key.studentID); err == nil {
				entry.Name = u.Name
			}
		}
		roster = append(roster, entry)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].Name < roster[j].Name })
	return roster, nil
}

// CountEnrolled returns the roster size for a subject.
func (s *SubjectStore) CountEnrolled(_ context.Context, subjectID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key := range s.enrollments {
		if key.subjectID == subjectID {
			count++
		}
	}
	return count, nil
}
