package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

// SyncService is the student-facing read model. Polling it is always
// safe: the state it returns is rebuilt from storage on every call, so
// a client that missed every push event still converges.
type SyncService struct {
	activities *ActivityService
	responses  ResponseStore
	subjects   *SubjectService
	log        zerolog.Logger
	now        func() time.Time
}

// NewSyncService creates a new SyncService.
func NewSyncService(
	activities *ActivityService,
	responses ResponseStore,
	subjects *SubjectService,
	log zerolog.Logger,
	now func() time.Time,
) *SyncService {
	if now == nil {
		now = time.Now
	}
	return &SyncService{
		activities: activities,
		responses:  responses,
		subjects:   subjects,
		log:        log.With().Str("component", "sync_service").Logger(),
		now:        now,
	}
}

// Active returns the current state for an enrolled student: the live
// activity with its remaining time and whether the student already
// answered, or the latest shared summary when nothing is live. The
// stored status is reconciled with the clock before it is trusted, so
// an expired activity never reaches a student as live.
func (s *SyncService) Active(ctx context.Context, studentID, subjectID uuid.UUID) (*model.StudentSyncState, error) {
	if err := s.subjects.RequireEnrollment(ctx, subjectID, studentID); err != nil {
		return nil, err
	}

	state := &model.StudentSyncState{}

	activity, err := s.activities.activities.FindVisibleLiveBySubject(ctx, subjectID)
	switch {
	case err == nil:
		activity, err = s.activities.ReapExpired(ctx, activity)
		if err != nil {
			return nil, err
		}
		at := s.now()
		if activity.IsLive(at) {
			view, err := activity.ConsumerView()
			if err != nil {
				return nil, fmt.Errorf("build consumer view: %w", err)
			}
			state.Active = view
			state.TimeRemaining = activity.TimeRemaining(at)
			state.AlreadyAnswered, err = s.hasAnswered(ctx, activity.ID, studentID)
			if err != nil {
				return nil, err
			}
			return state, nil
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("find live activity: %w", err)
	}

	summary, err := s.activities.activities.FindLatestSharedSummary(ctx, subjectID)
	if err == nil {
		state.SharedSummary = summary
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find shared summary: %w", err)
	}
	return state, nil
}

func (s *SyncService) hasAnswered(ctx context.Context, activityID, studentID uuid.UUID) (bool, error) {
	_, err := s.responses.GetByActivityAndStudent(ctx, activityID, studentID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("check response: %w", err)
}
