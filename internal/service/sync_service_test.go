package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

func TestActiveReturnsLiveActivityStripped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	student := e.addUser(t, "student", model.RoleStudent)
	subject := e.addSubject(t, teacher, student)
	session := e.openSession(t, teacher, subject)
	activity := e.createQuiz(t, teacher, session.ID)
	e.broadcast(t, teacher, activity.ID)

	e.clock.Advance(40 * time.Second)

	state, err := e.syncSvc.Active(ctx, student, subject)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if state.Active == nil {
		t.Fatal("expected a live activity")
	}
	if state.Active.ID != activity.ID {
		t.Fatalf("active = %s, want %s", state.Active.ID, activity.ID)
	}
	if state.TimeRemaining != 260 {
		t.Fatalf("time remaining = %d, want 260", state.TimeRemaining)
	}
	if state.AlreadyAnswered {
		t.Fatal("student has not answered yet")
	}
	if containsCorrect(string(state.Active.Payload)) {
		t.Fatalf("answer key leaked to student: %s", state.Active.Payload)
	}

	if _, err := e.responseSvc.Submit(ctx, student, activity.ID, model.SubmitResponseRequest{Answers: map[string]int{"0": 0}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	state, err = e.syncSvc.Active(ctx, student, subject)
	if err != nil {
		t.Fatalf("second active: %v", err)
	}
	if !state.AlreadyAnswered {
		t.Fatal("expected already answered after submit")
	}
}

func TestActiveRequiresEnrollment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	outsider := e.addUser(t, "outsider", model.RoleStudent)
	subject := e.addSubject(t, teacher)

	_, err := e.syncSvc.Active(ctx, outsider, subject)
	if !errors.Is(err, domain.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestActiveReapsExpiredActivity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	student := e.addUser(t, "student", model.RoleStudent)
	subject := e.addSubject(t, teacher, student)
	session := e.openSession(t, teacher, subject)
	activity := e.createQuiz(t, teacher, session.ID)
	e.broadcast(t, teacher, activity.ID)

	e.clock.Advance(600 * time.Second)

	state, err := e.syncSvc.Active(ctx, student, subject)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if state.Active != nil {
		t.Fatalf("expired activity reached a student as live: %s", state.Active.ID)
	}

	stored, err := e.activities.GetByID(ctx, activity.ID)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if stored.Status != model.ActivityStatusEnded {
		t.Fatalf("poll did not reconcile status, got %s", stored.Status)
	}
}

func TestActiveFallsBackToSharedSummary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	student := e.addUser(t, "student", model.RoleStudent)
	subject := e.addSubject(t, teacher, student)
	session := e.openSession(t, teacher, subject)

	summary, err := e.activitySvc.Create(ctx, teacher, session.ID, model.CreateActivityRequest{
		Kind:    "summary",
		Title:   "Recap",
		Payload: []byte(`{"summary_text":"Key points from today."}`),
	})
	if err != nil {
		t.Fatalf("create summary: %v", err)
	}
	if _, err := e.activitySvc.ShareSummary(ctx, teacher, summary.ID); err != nil {
		t.Fatalf("share: %v", err)
	}

	state, err := e.syncSvc.Active(ctx, student, subject)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if state.Active != nil {
		t.Fatal("nothing is live")
	}
	if state.SharedSummary == nil || state.SharedSummary.ID != summary.ID {
		t.Fatalf("expected shared summary %s, got %+v", summary.ID, state.SharedSummary)
	}
}

func TestActiveEmptyStateWhenNothingShared(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	student := e.addUser(t, "student", model.RoleStudent)
	subject := e.addSubject(t, teacher, student)
	e.openSession(t, teacher, subject)

	state, err := e.syncSvc.Active(ctx, student, subject)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if state.Active != nil || state.SharedSummary != nil {
		t.Fatalf("expected empty state, got %+v", state)
	}
}
