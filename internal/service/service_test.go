package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/events"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/repository/memory"
	"github.com/classcast/classcast-backend/internal/scoring"
	"github.com/classcast/classcast-backend/internal/service"
)

// fakeClock is a settable time source shared by every service under
// test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// env wires every service against the in-memory stores, a recording
// publisher, and the fake clock.
type env struct {
	users       *memory.UserStore
	subjects    *memory.SubjectStore
	sessions    *memory.SessionStore
	activities  *memory.ActivityStore
	checkpoints *memory.CheckpointStore
	responses   *memory.ResponseStore

	recorder *events.Recorder
	clock    *fakeClock

	subjectSvc      *service.SubjectService
	sessionSvc      *service.SessionService
	activitySvc     *service.ActivityService
	responseSvc     *service.ResponseService
	rankingSvc      *service.RankingService
	syncSvc         *service.SyncService
	presentationSvc *service.PresentationService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := memory.NewUserStore()
	subjects := memory.NewSubjectStore(users)
	sessions := memory.NewSessionStore()
	activities := memory.NewActivityStore(sessions)
	checkpoints := memory.NewCheckpointStore()
	responses := memory.NewResponseStore(users)

	recorder := events.NewRecorder()
	clock := newFakeClock()
	log := zerolog.Nop()

	subjectSvc := service.NewSubjectService(subjects, users, log)
	sessionSvc := service.NewSessionService(sessions, subjects, activities, checkpoints, recorder, log, clock.Now)
	activitySvc := service.NewActivityService(activities, sessions, checkpoints, service.StaticGenerator{}, recorder, log, clock.Now)
	responseSvc := service.NewResponseService(responses, sessions, activitySvc, subjectSvc, scoring.NewRegistry(), recorder, log, clock.Now)
	rankingSvc := service.NewRankingService(responses, subjects, sessions, activitySvc, nil, recorder, log, clock.Now)
	syncSvc := service.NewSyncService(activitySvc, responses, subjectSvc, log, clock.Now)
	presentationSvc := service.NewPresentationService(sessionSvc, activities, nil, log, clock.Now)

	return &env{
		users:           users,
		subjects:        subjects,
		sessions:        sessions,
		activities:      activities,
		checkpoints:     checkpoints,
		responses:       responses,
		recorder:        recorder,
		clock:           clock,
		subjectSvc:      subjectSvc,
		sessionSvc:      sessionSvc,
		activitySvc:     activitySvc,
		responseSvc:     responseSvc,
		rankingSvc:      rankingSvc,
		syncSvc:         syncSvc,
		presentationSvc: presentationSvc,
	}
}

func (e *env) addUser(t *testing.T, name string, role model.Role) uuid.UUID {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

// addSubject creates a subject owned by teacherID with the given
// students enrolled.
func (e *env) addSubject(t *testing.T, teacherID uuid.UUID, students ...uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	subject := &model.Subject{Name: "Biology", TeacherID: teacherID}
	if err := e.subjects.Create(ctx, subject); err != nil {
		t.Fatalf("create subject: %v", err)
	}
	for _, studentID := range students {
		if err := e.subjects.Enroll(ctx, subject.ID, studentID); err != nil {
			t.Fatalf("enroll: %v", err)
		}
	}
	return subject.ID
}

// openSession opens a lesson session for the subject.
func (e *env) openSession(t *testing.T, teacherID, subjectID uuid.UUID) *model.Session {
	t.Helper()
	session, err := e.sessionSvc.Open(context.Background(), teacherID, model.OpenSessionRequest{SubjectID: subjectID, Title: "Lesson"})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session
}

// quizPayload is a three-question quiz with answer key [0, 1, 2].
const quizPayload = `{"questions":[
	{"question":"Q1","options":["a","b","c"],"correct":0},
	{"question":"Q2","options":["a","b","c"],"correct":1},
	{"question":"Q3","options":["a","b","c"],"correct":2}
]}`

// createQuiz creates a waiting quiz activity with a 300s time limit.
func (e *env) createQuiz(t *testing.T, teacherID uuid.UUID, sessionID uuid.UUID) *model.Activity {
	t.Helper()
	limit := 300
	activity, err := e.activitySvc.Create(context.Background(), teacherID, sessionID, model.CreateActivityRequest{
		Kind:             "quiz",
		Title:            "Checkpoint quiz",
		Payload:          []byte(quizPayload),
		TimeLimitSeconds: &limit,
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return activity
}

func (e *env) broadcast(t *testing.T, teacherID, activityID uuid.UUID) *model.Activity {
	t.Helper()
	activity, err := e.activitySvc.Broadcast(context.Background(), teacherID, activityID)
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	return activity
}

// subjectChannel is the event topic assertions check against.
func subjectChannel(subjectID uuid.UUID) string {
	return config.CacheKey.SubjectEventsChannel(subjectID.String())
}
