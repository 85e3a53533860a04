package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

// SubjectService manages subjects and their enrollment roster.
type SubjectService struct {
	subjects SubjectStore
	users    UserStore
	log      zerolog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(subjects SubjectStore, users UserStore, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjects: subjects,
		users:    users,
		log:      log.With().Str("component", "subject_service").Logger(),
	}
}

// Create registers a subject owned by the teacher.
func (s *SubjectService) Create(ctx context.Context, teacherID uuid.UUID, req model.CreateSubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{
		Name:      req.Name,
		TeacherID: teacherID,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}

	s.log.Info().Str("subject_id", subject.ID.String()).Str("name", subject.Name).Msg("subject created")
	return subject, nil
}

// GetOwned returns the subject if the teacher owns it, otherwise
// domain.ErrForbidden.
func (s *SubjectService) GetOwned(ctx context.Context, teacherID, subjectID uuid.UUID) (*model.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.TeacherID != teacherID {
		return nil, domain.ErrForbidden
	}
	return subject, nil
}

// ListByTeacher returns the subjects a teacher owns.
func (s *SubjectService) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Subject, error) {
	return s.subjects.ListByTeacher(ctx, teacherID)
}

// ListByStudent returns the subjects a student is enrolled in.
func (s *SubjectService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Subject, error) {
	return s.subjects.ListByStudent(ctx, studentID)
}

// EnrollStudent adds a student account to the roster of a subject the
// teacher owns. Enrolling the same student twice is a no-op.
func (s *SubjectService) EnrollStudent(ctx context.Context, teacherID, subjectID uuid.UUID, studentEmail string) (*model.RosterEntry, error) {
	if _, err := s.GetOwned(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}

	student, err := s.users.GetByEmail(ctx, studentEmail)
	if err != nil {
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, domain.ErrInvalidState
	}

	if err := s.subjects.Enroll(ctx, subjectID, student.ID); err != nil {
		return nil, fmt.Errorf("enroll student: %w", err)
	}

	s.log.Info().
		Str("subject_id", subjectID.String()).
		Str("student_id", student.ID.String()).
		Msg("student enrolled")

	return &model.RosterEntry{StudentID: student.ID, Name: student.Name}, nil
}

// Roster returns the enrolled students of a subject the teacher owns.
func (s *SubjectService) Roster(ctx context.Context, teacherID, subjectID uuid.UUID) ([]model.RosterEntry, error) {
	if _, err := s.GetOwned(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}
	return s.subjects.ListRoster(ctx, subjectID)
}

// RequireEnrollment returns domain.ErrNotEnrolled unless the student is
// on the subject's roster.
func (s *SubjectService) RequireEnrollment(ctx context.Context, subjectID, studentID uuid.UUID) error {
	enrolled, err := s.subjects.IsEnrolled(ctx, subjectID, studentID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return domain.ErrNotEnrolled
	}
	return nil
}
