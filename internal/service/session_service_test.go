package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/events"
	"github.com/classcast/classcast-backend/internal/model"
)

func TestOpenSessionIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	subject := e.addSubject(t, teacher)

	first, err := e.sessionSvc.Open(ctx, teacher, model.OpenSessionRequest{SubjectID: subject})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	second, err := e.sessionSvc.Open(ctx, teacher, model.OpenSessionRequest{SubjectID: subject})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same session, got %s and %s", first.ID, second.ID)
	}
}

func TestOpenSessionAfterEndCreatesNew(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	subject := e.addSubject(t, teacher)

	first := e.openSession(t, teacher, subject)
	if _, err := e.sessionSvc.End(ctx, teacher, first.ID); err != nil {
		t.Fatalf("end: %v", err)
	}

	second := e.openSession(t, teacher, subject)
	if first.ID == second.ID {
		t.Fatal("expected a fresh session after ending the previous one")
	}
}

func TestOpenSessionRequiresOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.addUser(t, "owner", model.RoleTeacher)
	intruder := e.addUser(t, "intruder", model.RoleTeacher)
	subject := e.addSubject(t, owner)

	_, err := e.sessionSvc.Open(ctx, intruder, model.OpenSessionRequest{SubjectID: subject})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPauseResumeTransitions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	subject := e.addSubject(t, teacher)
	session := e.openSession(t, teacher, subject)

	paused, err := e.sessionSvc.Pause(ctx, teacher, session.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != model.SessionStatusPaused {
		t.Fatalf("expected paused, got %s", paused.Status)
	}

	// Pausing twice is not a valid transition.
	if _, err := e.sessionSvc.Pause(ctx, teacher, session.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	resumed, err := e.sessionSvc.Resume(ctx, teacher, session.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != model.SessionStatusActive {
		t.Fatalf("expected active, got %s", resumed.Status)
	}
}

func TestEndSessionCascadesToOpenActivities(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	subject := e.addSubject(t, teacher)
	session := e.openSession(t, teacher, subject)

	waiting := e.createQuiz(t, teacher, session.ID)
	live := e.createQuiz(t, teacher, session.ID)
	e.broadcast(t, teacher, live.ID)

	ended, err := e.sessionSvc.End(ctx, teacher, session.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.Status != model.SessionStatusEnded || ended.EndedAt == nil {
		t.Fatalf("expected ended with timestamp, got %+v", ended)
	}

	got, err := e.activitySvc.ListBySession(ctx, teacher, session.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(got))
	}
	for _, a := range got {
		if a.ID != waiting.ID && a.ID != live.ID {
			t.Fatalf("unexpected activity %s", a.ID)
		}
		if a.Status != model.ActivityStatusEnded {
			t.Fatalf("activity %s not ended after session end", a.ID)
		}
	}

	endedEvents := e.recorder.ByType(events.TypeActivityEnded)
	if len(endedEvents) != 2 {
		t.Fatalf("expected 2 ended events, got %d", len(endedEvents))
	}
	for _, rec := range endedEvents {
		if rec.Topic != subjectChannel(subject) {
			t.Fatalf("event published on wrong topic %s", rec.Topic)
		}
	}

	// Ending again is a no-op, not an error.
	if _, err := e.sessionSvc.End(ctx, teacher, session.ID); err != nil {
		t.Fatalf("second end: %v", err)
	}
	if got := e.recorder.ByType(events.TypeActivityEnded); len(got) != 2 {
		t.Fatalf("second end re-published events: %d", len(got))
	}
}

func TestAppendTranscriptRejectsEndedSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	subject := e.addSubject(t, teacher)
	session := e.openSession(t, teacher, subject)

	text := "photosynthesis converts light into chemical energy"
	updated, err := e.sessionSvc.AppendTranscript(ctx, teacher, session.ID, model.UpdateTranscriptRequest{Transcript: &text})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if updated.WordCount() != 6 {
		t.Fatalf("expected 6 words, got %d", updated.WordCount())
	}

	if _, err := e.sessionSvc.End(ctx, teacher, session.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := e.sessionSvc.AppendTranscript(ctx, teacher, session.ID, model.UpdateTranscriptRequest{Transcript: &text}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
