package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

// statusMarkerTTL keeps markers around for the lifetime of a working
// day; an expired marker just forces one full refetch.
const statusMarkerTTL = 24 * time.Hour

// PresentationService drives address-coded sessions: anonymous viewers
// join with a short code and poll for whatever content the presenter
// pushed last. Each push replaces the previous one and bumps a cheap
// status marker so viewers only refetch when something changed.
type PresentationService struct {
	sessions   *SessionService
	activities ActivityStore
	rdb        *redis.Client
	log        zerolog.Logger
	now        func() time.Time
}

// NewPresentationService creates a new PresentationService.
func NewPresentationService(
	sessions *SessionService,
	activities ActivityStore,
	rdb *redis.Client,
	log zerolog.Logger,
	now func() time.Time,
) *PresentationService {
	if now == nil {
		now = time.Now
	}
	return &PresentationService{
		sessions:   sessions,
		activities: activities,
		rdb:        rdb,
		log:        log.With().Str("component", "presentation_service").Logger(),
		now:        now,
	}
}

// Start opens (or resumes) the presenter's address-coded session.
func (s *PresentationService) Start(ctx context.Context, ownerID uuid.UUID, title string) (*model.Session, error) {
	return s.sessions.OpenPresentation(ctx, ownerID, title)
}

// Send pushes content to the presenter's open presentation, replacing
// whatever was on screen before.
func (s *PresentationService) Send(ctx context.Context, ownerID uuid.UUID, req model.SendContentRequest) (*model.Activity, error) {
	session, err := s.openPresentation(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.activities.EndAllOpenBySession(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("end previous content: %w", err)
	}

	payload, err := json.Marshal(model.CustomPayload{ContentType: req.Type, Data: req.Data})
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}

	activity := &model.Activity{
		SessionID: session.ID,
		Kind:      model.ActivityKindCustom,
		Title:     req.Type,
		Payload:   payload,
		Status:    model.ActivityStatusWaiting,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	now := s.now()
	if _, err := s.activities.MarkBroadcast(ctx, activity.ID, now, nil); err != nil {
		return nil, fmt.Errorf("broadcast content: %w", err)
	}
	activity.Status = model.ActivityStatusActive
	activity.BroadcastAt = &now
	activity.VisibleToConsumers = true

	s.touchMarker(ctx, session)

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("content_type", req.Type).
		Msg("presentation content sent")
	return activity, nil
}

// Clear blanks the viewers' screens without ending the session.
func (s *PresentationService) Clear(ctx context.Context, ownerID uuid.UUID) error {
	session, err := s.openPresentation(ctx, ownerID)
	if err != nil {
		return err
	}
	if _, err := s.activities.EndAllOpenBySession(ctx, session.ID); err != nil {
		return fmt.Errorf("end content: %w", err)
	}
	s.touchMarker(ctx, session)
	return nil
}

// End terminates the presenter's open presentation.
func (s *PresentationService) End(ctx context.Context, ownerID uuid.UUID) (*model.Session, error) {
	session, err := s.openPresentation(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ended, err := s.sessions.End(ctx, ownerID, session.ID)
	if err != nil {
		return nil, err
	}
	s.touchMarker(ctx, ended)
	return ended, nil
}

// ViewerState resolves an address code for an anonymous viewer: the
// session, the content currently on screen, and the status marker to
// poll against.
func (s *PresentationService) ViewerState(ctx context.Context, code string) (*model.ViewerSyncState, error) {
	session, err := s.sessions.sessions.GetByAddressCode(ctx, code)
	if err != nil {
		return nil, err
	}

	state := &model.ViewerSyncState{
		Session:      session,
		StatusMarker: s.readMarker(ctx, code),
	}
	if session.IsEnded() {
		return state, nil
	}

	listed, err := s.activities.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	for i := range listed {
		if listed[i].Status == model.ActivityStatusActive && listed[i].VisibleToConsumers {
			state.Current = &listed[i]
			break
		}
	}
	return state, nil
}

// Marker returns just the status marker for a code, the cheap half of
// the viewer poll.
func (s *PresentationService) Marker(ctx context.Context, code string) (string, error) {
	if _, err := s.sessions.sessions.GetByAddressCode(ctx, code); err != nil {
		return "", err
	}
	return s.readMarker(ctx, code), nil
}

func (s *PresentationService) openPresentation(ctx context.Context, ownerID uuid.UUID) (*model.Session, error) {
	session, err := s.sessions.sessions.GetOpenPresentationByOwner(ctx, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidState
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *PresentationService) touchMarker(ctx context.Context, session *model.Session) {
	if s.rdb == nil || session.AddressCode == nil {
		return
	}
	key := config.CacheKey.SessionStatusKey(*session.AddressCode)
	marker := uuid.New().String()
	if err := s.rdb.Set(ctx, key, marker, statusMarkerTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("status marker write failed")
	}
}

func (s *PresentationService) readMarker(ctx context.Context, code string) string {
	if s.rdb == nil {
		return ""
	}
	marker, err := s.rdb.Get(ctx, config.CacheKey.SessionStatusKey(code)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("status marker read failed")
		}
		return ""
	}
	return marker
}
