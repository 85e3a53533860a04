package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/events"
	"github.com/classcast/classcast-backend/internal/model"
)

const (
	addressCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	addressCodeLength   = 6
	addressCodeAttempts = 10
)

// SessionService manages broadcast session lifecycle: the idempotent
// open, pause/resume, the terminal end with its activity cascade, and
// the transcript autosave.
type SessionService struct {
	sessions    SessionStore
	subjects    SubjectStore
	activities  ActivityStore
	checkpoints CheckpointStore
	publisher   events.Publisher
	log         zerolog.Logger
	now         func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions SessionStore,
	subjects SubjectStore,
	activities ActivityStore,
	checkpoints CheckpointStore,
	publisher events.Publisher,
	log zerolog.Logger,
	now func() time.Time,
) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions:    sessions,
		subjects:    subjects,
		activities:  activities,
		checkpoints: checkpoints,
		publisher:   publisher,
		log:         log.With().Str("component", "session_service").Logger(),
		now:         now,
	}
}

// Open starts a lesson session for a subject the teacher owns. Opening
// while a non-ended session exists returns that session unchanged, so
// a reconnecting client never forks a second live session.
func (s *SessionService) Open(ctx context.Context, ownerID uuid.UUID, req model.OpenSessionRequest) (*model.Session, error) {
	subject, err := s.subjects.GetByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if subject.TeacherID != ownerID {
		return nil, domain.ErrForbidden
	}

	existing, err := s.sessions.GetOpenByOwnerAndSubject(ctx, ownerID, req.SubjectID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find open session: %w", err)
	}

	title := req.Title
	if title == "" {
		title = subject.Name + " - " + s.now().Format("2 Jan 2006")
	}

	subjectID := req.SubjectID
	session := &model.Session{
		SubjectID: &subjectID,
		OwnerID:   ownerID,
		Title:     title,
		Status:    model.SessionStatusActive,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("subject_id", req.SubjectID.String()).
		Msg("session opened")
	return session, nil
}

// OpenPresentation starts an address-coded session not bound to any
// subject. Reuses the owner's existing open presentation if one exists.
func (s *SessionService) OpenPresentation(ctx context.Context, ownerID uuid.UUID, title string) (*model.Session, error) {
	existing, err := s.sessions.GetOpenPresentationByOwner(ctx, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find open presentation: %w", err)
	}

	if title == "" {
		title = "Presentation " + s.now().Format("2 Jan 2006")
	}

	for attempt := 0; attempt < addressCodeAttempts; attempt++ {
		code, err := generateAddressCode()
		if err != nil {
			return nil, fmt.Errorf("generate address code: %w", err)
		}
		taken, err := s.sessions.AddressCodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check address code: %w", err)
		}
		if taken {
			continue
		}

		session := &model.Session{
			OwnerID:     ownerID,
			Title:       title,
			Status:      model.SessionStatusActive,
			AddressCode: &code,
		}
		err = s.sessions.Create(ctx, session)
		if errors.Is(err, domain.ErrConflict) {
			// Lost the race for this code to a concurrent create.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create presentation: %w", err)
		}

		s.log.Info().
			Str("session_id", session.ID.String()).
			Str("address_code", code).
			Msg("presentation opened")
		return session, nil
	}

	return nil, errors.New("address code space exhausted")
}

// GetOwned returns the session if the teacher owns it.
func (s *SessionService) GetOwned(ctx context.Context, ownerID, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}

// Pause suspends an active session. Only active sessions can pause.
func (s *SessionService) Pause(ctx context.Context, ownerID, sessionID uuid.UUID) (*model.Session, error) {
	return s.transition(ctx, ownerID, sessionID, model.SessionStatusActive, model.SessionStatusPaused)
}

// Resume reactivates a paused session.
func (s *SessionService) Resume(ctx context.Context, ownerID, sessionID uuid.UUID) (*model.Session, error) {
	return s.transition(ctx, ownerID, sessionID, model.SessionStatusPaused, model.SessionStatusActive)
}

func (s *SessionService) transition(ctx context.Context, ownerID, sessionID uuid.UUID, from, to model.SessionStatus) (*model.Session, error) {
	session, err := s.GetOwned(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != from {
		return nil, domain.ErrInvalidState
	}
	if err := s.sessions.UpdateStatus(ctx, sessionID, to, nil); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	session.Status = to
	return session, nil
}

// End moves a session to its terminal state and force-ends every open
// activity inside it. Ending an already-ended session is a no-op.
func (s *SessionService) End(ctx context.Context, ownerID, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.GetOwned(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return session, nil
	}

	now := s.now()
	if err := s.sessions.UpdateStatus(ctx, sessionID, model.SessionStatusEnded, &now); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	session.Status = model.SessionStatusEnded
	session.EndedAt = &now

	ended, err := s.activities.EndAllOpenBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("end open activities: %w", err)
	}
	for _, a := range ended {
		s.publishEnded(ctx, session, a.ID)
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("ended_activities", len(ended)).
		Msg("session ended")
	return session, nil
}

// AppendTranscript saves the accumulating transcript (autosave). The
// transcript only grows between checkpoints; ended sessions reject it.
func (s *SessionService) AppendTranscript(ctx context.Context, ownerID, sessionID uuid.UUID, req model.UpdateTranscriptRequest) (*model.Session, error) {
	session, err := s.GetOwned(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return nil, domain.ErrInvalidState
	}

	var title *string
	if req.Title != "" {
		title = &req.Title
	}
	now := s.now()
	if err := s.sessions.UpdateTranscript(ctx, sessionID, *req.Transcript, title, now); err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}

	session.Transcript = *req.Transcript
	if title != nil {
		session.Title = *title
	}
	session.UpdatedAt = now
	return session, nil
}

// ListBySubject returns a subject's session history for its owner.
func (s *SessionService) ListBySubject(ctx context.Context, ownerID, subjectID uuid.UUID) ([]model.Session, error) {
	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.TeacherID != ownerID {
		return nil, domain.ErrForbidden
	}
	return s.sessions.ListBySubject(ctx, subjectID)
}

// ListCheckpoints returns a session's transcript snapshots in creation
// order.
func (s *SessionService) ListCheckpoints(ctx context.Context, ownerID, sessionID uuid.UUID) ([]model.Checkpoint, error) {
	if _, err := s.GetOwned(ctx, ownerID, sessionID); err != nil {
		return nil, err
	}
	return s.checkpoints.ListBySession(ctx, sessionID)
}

func (s *SessionService) publishEnded(ctx context.Context, session *model.Session, activityID uuid.UUID) {
	if session.SubjectID == nil {
		return
	}
	s.publisher.Publish(ctx, config.CacheKey.SubjectEventsChannel(session.SubjectID.String()), events.Event{
		Type:       events.TypeActivityEnded,
		SessionID:  session.ID,
		ActivityID: activityID,
		Timestamp:  s.now(),
	})
}

// generateAddressCode draws a 6-character uppercase alphanumeric code
// from crypto/rand.
func generateAddressCode() (string, error) {
	buf := make([]byte, addressCodeLength)
	max := big.NewInt(int64(len(addressCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = addressCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
