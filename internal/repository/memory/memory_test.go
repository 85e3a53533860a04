package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/repository/memory"
)

func TestResponseStoreRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewResponseStore(nil)

	activityID := uuid.New()
	studentID := uuid.New()

	first := &model.Response{ActivityID: activityID, StudentID: studentID, SubmittedAt: time.Now()}
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := &model.Response{ActivityID: activityID, StudentID: studentID, SubmittedAt: time.Now()}
	if err := store.Create(ctx, second); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The same student may answer a different activity.
	third := &model.Response{ActivityID: uuid.New(), StudentID: studentID, SubmittedAt: time.Now()}
	if err := store.Create(ctx, third); err != nil {
		t.Fatalf("other activity: %v", err)
	}
}

func TestUserStoreRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()

	if err := store.Create(ctx, &model.User{Name: "a", Email: "dup@example.com", Role: model.RoleStudent}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := store.Create(ctx, &model.User{Name: "b", Email: "dup@example.com", Role: model.RoleStudent})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSessionStoreRejectsDuplicateAddressCode(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()

	code := "ABC123"
	first := &model.Session{OwnerID: uuid.New(), Status: model.SessionStatusActive, AddressCode: &code}
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	taken, err := store.AddressCodeExists(ctx, code)
	if err != nil || !taken {
		t.Fatalf("exists = %v, %v", taken, err)
	}

	dup := &model.Session{OwnerID: uuid.New(), Status: model.SessionStatusActive, AddressCode: &code}
	if err := store.Create(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestActivityStoreBroadcastIsOneShot(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	store := memory.NewActivityStore(sessions)

	session := &model.Session{OwnerID: uuid.New(), Status: model.SessionStatusActive}
	if err := sessions.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	activity := &model.Activity{SessionID: session.ID, Kind: model.ActivityKindQuiz, Status: model.ActivityStatusWaiting}
	if err := store.Create(ctx, activity); err != nil {
		t.Fatalf("create activity: %v", err)
	}

	now := time.Now()
	moved, err := store.MarkBroadcast(ctx, activity.ID, now, nil)
	if err != nil || !moved {
		t.Fatalf("first broadcast: moved=%v err=%v", moved, err)
	}
	moved, err = store.MarkBroadcast(ctx, activity.ID, now, nil)
	if err != nil {
		t.Fatalf("second broadcast: %v", err)
	}
	if moved {
		t.Fatal("an activity must not go live twice")
	}

	moved, err = store.MarkEnded(ctx, activity.ID)
	if err != nil || !moved {
		t.Fatalf("end: moved=%v err=%v", moved, err)
	}
	moved, err = store.MarkEnded(ctx, activity.ID)
	if err != nil {
		t.Fatalf("second end: %v", err)
	}
	if moved {
		t.Fatal("ended is terminal")
	}
	moved, err = store.MarkBroadcast(ctx, activity.ID, now, nil)
	if err != nil {
		t.Fatalf("broadcast after end: %v", err)
	}
	if moved {
		t.Fatal("ended activities never go back to active")
	}
}
