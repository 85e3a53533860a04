package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

func TestStartPresentationReusesOpenSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	presenter := e.addUser(t, "presenter", model.RoleTeacher)

	first, err := e.presentationSvc.Start(ctx, presenter, "Demo")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.AddressCode == nil || len(*first.AddressCode) != 6 {
		t.Fatalf("address code = %v", first.AddressCode)
	}
	if first.SubjectID != nil {
		t.Fatal("presentation sessions are not bound to a subject")
	}

	second, err := e.presentationSvc.Start(ctx, presenter, "")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if first.ID != second.ID || *first.AddressCode != *second.AddressCode {
		t.Fatal("expected the open presentation to be reused")
	}
}

func TestSendReplacesCurrentContent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	presenter := e.addUser(t, "presenter", model.RoleTeacher)
	session, err := e.presentationSvc.Start(ctx, presenter, "Demo")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	first, err := e.presentationSvc.Send(ctx, presenter, model.SendContentRequest{Type: "image", Data: []byte(`{"url":"a.png"}`)})
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	if first.Status != model.ActivityStatusActive || !first.VisibleToConsumers {
		t.Fatalf("first content not live: %+v", first)
	}

	second, err := e.presentationSvc.Send(ctx, presenter, model.SendContentRequest{Type: "question", Data: []byte(`{"text":"Thoughts?"}`)})
	if err != nil {
		t.Fatalf("second send: %v", err)
	}

	state, err := e.presentationSvc.ViewerState(ctx, *session.AddressCode)
	if err != nil {
		t.Fatalf("viewer state: %v", err)
	}
	if state.Current == nil || state.Current.ID != second.ID {
		t.Fatalf("current = %+v, want %s", state.Current, second.ID)
	}

	replaced, err := e.activities.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if replaced.Status != model.ActivityStatusEnded {
		t.Fatalf("replaced content still %s", replaced.Status)
	}
}

func TestSendWithoutOpenPresentation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	presenter := e.addUser(t, "presenter", model.RoleTeacher)

	_, err := e.presentationSvc.Send(ctx, presenter, model.SendContentRequest{Type: "blank"})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestClearBlanksViewerScreen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	presenter := e.addUser(t, "presenter", model.RoleTeacher)
	session, err := e.presentationSvc.Start(ctx, presenter, "Demo")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.presentationSvc.Send(ctx, presenter, model.SendContentRequest{Type: "image", Data: []byte(`{"url":"a.png"}`)}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := e.presentationSvc.Clear(ctx, presenter); err != nil {
		t.Fatalf("clear: %v", err)
	}

	state, err := e.presentationSvc.ViewerState(ctx, *session.AddressCode)
	if err != nil {
		t.Fatalf("viewer state: %v", err)
	}
	if state.Current != nil {
		t.Fatalf("expected blank screen, got %+v", state.Current)
	}
}

func TestViewerStateUnknownCode(t *testing.T) {
	e := newEnv(t)

	_, err := e.presentationSvc.ViewerState(context.Background(), "ZZZZZZ")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEndPresentation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	presenter := e.addUser(t, "presenter", model.RoleTeacher)
	session, err := e.presentationSvc.Start(ctx, presenter, "Demo")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.presentationSvc.Send(ctx, presenter, model.SendContentRequest{Type: "image", Data: []byte(`{"url":"a.png"}`)}); err != nil {
		t.Fatalf("send: %v", err)
	}

	ended, err := e.presentationSvc.End(ctx, presenter)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !ended.IsEnded() {
		t.Fatalf("status = %s", ended.Status)
	}

	// The code still resolves so late viewers see the session is over.
	state, err := e.presentationSvc.ViewerState(ctx, *session.AddressCode)
	if err != nil {
		t.Fatalf("viewer state: %v", err)
	}
	if !state.Session.IsEnded() || state.Current != nil {
		t.Fatalf("expected ended session with no content, got %+v", state)
	}

	// A fresh start opens a new session with a new code.
	again, err := e.presentationSvc.Start(ctx, presenter, "Demo")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if again.ID == session.ID {
		t.Fatal("expected a new session after end")
	}
}
