package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/events"
	"github.com/classcast/classcast-backend/internal/model"
)

// ErrNoQuestions signals a quiz payload without a single question.
var ErrNoQuestions = errors.New("quiz has no questions")

// ActivityService manages the activity lifecycle: creation with its
// transcript checkpoint, the broadcast that starts the response window,
// and the two ways that window closes (manual end, deadline reap).
type ActivityService struct {
	activities  ActivityStore
	sessions    SessionStore
	checkpoints CheckpointStore
	generator   ContentGenerator
	publisher   events.Publisher
	log         zerolog.Logger
	now         func() time.Time
}

// NewActivityService creates a new ActivityService.
func NewActivityService(
	activities ActivityStore,
	sessions SessionStore,
	checkpoints CheckpointStore,
	generator ContentGenerator,
	publisher events.Publisher,
	log zerolog.Logger,
	now func() time.Time,
) *ActivityService {
	if now == nil {
		now = time.Now
	}
	return &ActivityService{
		activities:  activities,
		sessions:    sessions,
		checkpoints: checkpoints,
		generator:   generator,
		publisher:   publisher,
		log:         log.With().Str("component", "activity_service").Logger(),
		now:         now,
	}
}

// Create adds a waiting activity to a session the teacher owns and
// checkpoints the transcript as it stood at creation time. Creating an
// activity pauses an active session: the lesson stream stops while the
// class works.
func (s *ActivityService) Create(ctx context.Context, ownerID, sessionID uuid.UUID, req model.CreateActivityRequest) (*model.Activity, error) {
	session, err := s.ownedSession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return nil, domain.ErrInvalidState
	}

	kind := model.ActivityKind(req.Kind)
	if err := validatePayload(kind, req.Payload); err != nil {
		return nil, err
	}

	checkpoint := &model.Checkpoint{
		SessionID:    sessionID,
		SnapshotText: session.Transcript,
		WordCount:    session.WordCount(),
		Reason:       string(kind),
	}
	if err := s.checkpoints.Create(ctx, checkpoint); err != nil {
		return nil, fmt.Errorf("create checkpoint: %w", err)
	}

	activity := &model.Activity{
		SessionID:        sessionID,
		CheckpointID:     &checkpoint.ID,
		Kind:             kind,
		Title:            req.Title,
		Payload:          req.Payload,
		Status:           model.ActivityStatusWaiting,
		TimeLimitSeconds: req.TimeLimitSeconds,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	if session.Status == model.SessionStatusActive {
		if err := s.sessions.UpdateStatus(ctx, sessionID, model.SessionStatusPaused, nil); err != nil {
			return nil, fmt.Errorf("pause session: %w", err)
		}
	}

	s.log.Info().
		Str("activity_id", activity.ID.String()).
		Str("session_id", sessionID.String()).
		Str("kind", req.Kind).
		Msg("activity created")
	return activity, nil
}

// GenerateQuiz builds a quiz from the session transcript and stores it
// as a waiting activity.
func (s *ActivityService) GenerateQuiz(ctx context.Context, ownerID, sessionID uuid.UUID, req model.GenerateQuizRequest) (*model.Activity, error) {
	session, err := s.ownedSession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return nil, domain.ErrInvalidState
	}

	quiz, err := s.generator.GenerateQuiz(ctx, session.Transcript, req.NumQuestions)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	payload, err := json.Marshal(quiz)
	if err != nil {
		return nil, fmt.Errorf("encode quiz: %w", err)
	}
	return s.Create(ctx, ownerID, sessionID, model.CreateActivityRequest{
		Kind:             string(model.ActivityKindQuiz),
		Title:            "Quiz: " + session.Title,
		Payload:          payload,
		TimeLimitSeconds: req.TimeLimit,
	})
}

// GenerateSummary builds a summary from the session transcript and
// stores it as a waiting activity.
func (s *ActivityService) GenerateSummary(ctx context.Context, ownerID, sessionID uuid.UUID) (*model.Activity, error) {
	session, err := s.ownedSession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return nil, domain.ErrInvalidState
	}

	summary, err := s.generator.GenerateSummary(ctx, session.Transcript)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return s.Create(ctx, ownerID, sessionID, model.CreateActivityRequest{
		Kind:    string(model.ActivityKindSummary),
		Title:   "Summary: " + session.Title,
		Payload: payload,
	})
}

// Broadcast opens the response window: waiting → active, deadline
// stamped from the time limit, visible to consumers. Broadcasting from
// any other state returns domain.ErrInvalidState, so an activity can go
// live at most once.
func (s *ActivityService) Broadcast(ctx context.Context, ownerID, activityID uuid.UUID) (*model.Activity, error) {
	activity, session, err := s.ownedActivity(ctx, ownerID, activityID)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return nil, domain.ErrInvalidState
	}

	broadcastAt := s.now()
	var deadline *time.Time
	if activity.TimeLimitSeconds != nil {
		d := broadcastAt.Add(time.Duration(*activity.TimeLimitSeconds) * time.Second)
		deadline = &d
	}

	moved, err := s.activities.MarkBroadcast(ctx, activityID, broadcastAt, deadline)
	if err != nil {
		return nil, fmt.Errorf("mark broadcast: %w", err)
	}
	if !moved {
		return nil, domain.ErrInvalidState
	}

	activity.Status = model.ActivityStatusActive
	activity.BroadcastAt = &broadcastAt
	activity.Deadline = deadline
	activity.VisibleToConsumers = true

	if view, err := activity.ConsumerView(); err == nil {
		s.publish(ctx, session, events.Event{
			Type:       events.TypeActivityBroadcast,
			SessionID:  session.ID,
			ActivityID: activity.ID,
			Payload:    view,
			Timestamp:  broadcastAt,
		})
	}

	s.log.Info().
		Str("activity_id", activityID.String()).
		Str("kind", string(activity.Kind)).
		Msg("activity broadcast")
	return activity, nil
}

// ShareSummary makes a summary visible to students without opening a
// response window. Only summary-kind activities can be shared this way.
func (s *ActivityService) ShareSummary(ctx context.Context, ownerID, activityID uuid.UUID) (*model.Activity, error) {
	activity, _, err := s.ownedActivity(ctx, ownerID, activityID)
	if err != nil {
		return nil, err
	}
	if activity.Kind != model.ActivityKindSummary {
		return nil, domain.ErrInvalidState
	}

	if err := s.activities.SetVisible(ctx, activityID, true); err != nil {
		return nil, fmt.Errorf("set visible: %w", err)
	}
	activity.VisibleToConsumers = true
	return activity, nil
}

// EndManually closes the response window ahead of (or without) a
// deadline. Ending an already-ended activity is a no-op.
func (s *ActivityService) EndManually(ctx context.Context, ownerID, activityID uuid.UUID) (*model.Activity, error) {
	activity, session, err := s.ownedActivity(ctx, ownerID, activityID)
	if err != nil {
		return nil, err
	}

	moved, err := s.activities.MarkEnded(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("mark ended: %w", err)
	}
	activity.Status = model.ActivityStatusEnded
	if moved {
		s.publish(ctx, session, events.Event{
			Type:       events.TypeActivityEnded,
			SessionID:  session.ID,
			ActivityID: activityID,
			Timestamp:  s.now(),
		})
	}
	return activity, nil
}

// ReapExpired reconciles an activity's stored status with the clock:
// past-deadline actives become ended, with the same event a manual end
// publishes. Read paths call this before trusting Status; the
// background sweeper calls it on overdue rows.
func (s *ActivityService) ReapExpired(ctx context.Context, activity *model.Activity) (*model.Activity, error) {
	if activity.Status != model.ActivityStatusActive || activity.Deadline == nil {
		return activity, nil
	}
	if s.now().Before(*activity.Deadline) {
		return activity, nil
	}

	moved, err := s.activities.MarkEnded(ctx, activity.ID)
	if err != nil {
		return nil, fmt.Errorf("mark ended: %w", err)
	}
	out := *activity
	out.Status = model.ActivityStatusEnded
	if moved {
		if session, err := s.sessions.GetByID(ctx, activity.SessionID); err == nil {
			s.publish(ctx, session, events.Event{
				Type:       events.TypeActivityEnded,
				SessionID:  session.ID,
				ActivityID: activity.ID,
				Timestamp:  s.now(),
			})
		}
		s.log.Debug().Str("activity_id", activity.ID.String()).Msg("activity expired")
	}
	return &out, nil
}

// SweepOverdue reaps every active activity whose deadline is at or
// before now, returning how many were ended. Backs the background
// sweeper.
func (s *ActivityService) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.activities.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue: %w", err)
	}

	reaped := 0
	for i := range overdue {
		moved, err := s.activities.MarkEnded(ctx, overdue[i].ID)
		if err != nil {
			return reaped, fmt.Errorf("mark ended: %w", err)
		}
		if !moved {
			// A lazy read reaped it between the list and the update.
			continue
		}
		reaped++
		if session, err := s.sessions.GetByID(ctx, overdue[i].SessionID); err == nil {
			s.publish(ctx, session, events.Event{
				Type:       events.TypeActivityEnded,
				SessionID:  session.ID,
				ActivityID: overdue[i].ID,
				Timestamp:  s.now(),
			})
		}
	}
	return reaped, nil
}

// Get returns an activity owned by the teacher, reconciled with the
// clock.
func (s *ActivityService) Get(ctx context.Context, ownerID, activityID uuid.UUID) (*model.Activity, error) {
	activity, _, err := s.ownedActivity(ctx, ownerID, activityID)
	if err != nil {
		return nil, err
	}
	return s.ReapExpired(ctx, activity)
}

// ListBySession returns a session's activities for its owner, newest
// first.
func (s *ActivityService) ListBySession(ctx context.Context, ownerID, sessionID uuid.UUID) ([]model.Activity, error) {
	if _, err := s.ownedSession(ctx, ownerID, sessionID); err != nil {
		return nil, err
	}
	return s.activities.ListBySession(ctx, sessionID)
}

func (s *ActivityService) ownedSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}

func (s *ActivityService) ownedActivity(ctx context.Context, ownerID, activityID uuid.UUID) (*model.Activity, *model.Session, error) {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.ownedSession(ctx, ownerID, activity.SessionID)
	if err != nil {
		return nil, nil, err
	}
	return activity, session, nil
}

func (s *ActivityService) publish(ctx context.Context, session *model.Session, event events.Event) {
	if session.SubjectID == nil {
		return
	}
	s.publisher.Publish(ctx, config.CacheKey.SubjectEventsChannel(session.SubjectID.String()), event)
}

func validatePayload(kind model.ActivityKind, payload json.RawMessage) error {
	switch kind {
	case model.ActivityKindQuiz:
		var quiz model.QuizPayload
		if err := json.Unmarshal(payload, &quiz); err != nil {
			return fmt.Errorf("decode quiz payload: %w", err)
		}
		if len(quiz.Questions) == 0 {
			return ErrNoQuestions
		}
		for i, q := range quiz.Questions {
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return fmt.Errorf("question %d: correct index out of range", i)
			}
		}
	case model.ActivityKindSummary:
		var summary model.SummaryPayload
		if err := json.Unmarshal(payload, &summary); err != nil {
			return fmt.Errorf("decode summary payload: %w", err)
		}
	case model.ActivityKindOpenQuestion:
		var open model.OpenQuestionPayload
		if err := json.Unmarshal(payload, &open); err != nil {
			return fmt.Errorf("decode open question payload: %w", err)
		}
	}
	return nil
}
