package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/events"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/scoring"
)

// ResponseService accepts and grades student submissions. The one
// response per (activity, student) rule is enforced by the store's
// unique constraint, not by a check-then-insert.
type ResponseService struct {
	responses  ResponseStore
	sessions   SessionStore
	activities *ActivityService
	subjects   *SubjectService
	scorers    *scoring.Registry
	publisher  events.Publisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewResponseService creates a new ResponseService.
func NewResponseService(
	responses ResponseStore,
	sessions SessionStore,
	activities *ActivityService,
	subjects *SubjectService,
	scorers *scoring.Registry,
	publisher events.Publisher,
	log zerolog.Logger,
	now func() time.Time,
) *ResponseService {
	if now == nil {
		now = time.Now
	}
	return &ResponseService{
		responses:  responses,
		sessions:   sessions,
		activities: activities,
		subjects:   subjects,
		scorers:    scorers,
		publisher:  publisher,
		log:        log.With().Str("component", "response_service").Logger(),
		now:        now,
	}
}

// Submit records a student's single submission for a live activity.
// The window is checked against a reconciled activity, so a deadline
// that passed between sweeps still rejects with domain.ErrExpired. A
// second submission returns domain.ErrConflict.
func (s *ResponseService) Submit(ctx context.Context, studentID, activityID uuid.UUID, req model.SubmitResponseRequest) (*model.Response, error) {
	activity, err := s.activities.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	activity, err = s.activities.ReapExpired(ctx, activity)
	if err != nil {
		return nil, err
	}

	submittedAt := s.now()
	if activity.Status == model.ActivityStatusWaiting {
		return nil, domain.ErrInvalidState
	}
	if !activity.IsLive(submittedAt) {
		return nil, domain.ErrExpired
	}

	session, err := s.sessions.GetByID(ctx, activity.SessionID)
	if err != nil {
		return nil, err
	}
	if session.SubjectID == nil {
		// Presentation viewers are anonymous and never submit.
		return nil, domain.ErrForbidden
	}
	if err := s.subjects.RequireEnrollment(ctx, *session.SubjectID, studentID); err != nil {
		return nil, err
	}

	payload, err := encodeSubmission(activity.Kind, req)
	if err != nil {
		return nil, err
	}

	result, err := s.scorers.ForKind(activity.Kind).Score(activity, payload)
	if err != nil {
		return nil, fmt.Errorf("score response: %w", err)
	}

	response := &model.Response{
		ActivityID:  activityID,
		StudentID:   studentID,
		Payload:     payload,
		Score:       result.Score,
		Total:       result.Total,
		Percentage:  result.Percentage,
		SubmittedAt: submittedAt,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, config.CacheKey.SubjectEventsChannel(session.SubjectID.String()), events.Event{
		Type:       events.TypeNewResponse,
		SessionID:  session.ID,
		ActivityID: activityID,
		Payload: map[string]interface{}{
			"student_id": studentID,
			"score":      result.Score,
			"total":      result.Total,
		},
		Timestamp: submittedAt,
	})

	s.log.Info().
		Str("activity_id", activityID.String()).
		Str("student_id", studentID.String()).
		Int("score", result.Score).
		Msg("response recorded")
	return response, nil
}

// GetMine returns the student's own submission for an activity.
func (s *ResponseService) GetMine(ctx context.Context, studentID, activityID uuid.UUID) (*model.Response, error) {
	return s.responses.GetByActivityAndStudent(ctx, activityID, studentID)
}

// encodeSubmission normalizes the request into the stored payload shape
// for the activity kind.
func encodeSubmission(kind model.ActivityKind, req model.SubmitResponseRequest) (json.RawMessage, error) {
	switch kind {
	case model.ActivityKindQuiz:
		answers := req.Answers
		if answers == nil {
			answers = map[string]int{}
		}
		return json.Marshal(model.QuizAnswers{Answers: answers})
	default:
		return json.Marshal(model.TextAnswer{Text: req.Text})
	}
}
