package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/classcast/classcast-backend/internal/events"
	"github.com/classcast/classcast-backend/internal/model"
)

func TestRankCoversFullRoster(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	ana := e.addUser(t, "ana", model.RoleStudent)
	ben := e.addUser(t, "ben", model.RoleStudent)
	zoe := e.addUser(t, "zoe", model.RoleStudent)
	subject := e.addSubject(t, teacher, ana, ben, zoe)
	session := e.openSession(t, teacher, subject)
	activity := e.createQuiz(t, teacher, session.ID)
	e.broadcast(t, teacher, activity.ID)

	// zoe answers first but scores 1; ben answers later with 3.
	if _, err := e.responseSvc.Submit(ctx, zoe, activity.ID, model.SubmitResponseRequest{Answers: map[string]int{"0": 0}}); err != nil {
		t.Fatalf("zoe submit: %v", err)
	}
	e.clock.Advance(10 * time.Second)
	if _, err := e.responseSvc.Submit(ctx, ben, activity.ID, model.SubmitResponseRequest{Answers: map[string]int{"0": 0, "1": 1, "2": 2}}); err != nil {
		t.Fatalf("ben submit: %v", err)
	}

	entries, err := e.rankingSvc.Rank(ctx, teacher, activity.ID)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected full roster of 3, got %d", len(entries))
	}

	if entries[0].StudentID != ben || entries[0].Score != 3 {
		t.Fatalf("position 1 = %s score %d, want ben with 3", entries[0].Name, entries[0].Score)
	}
	if entries[0].Position == nil || *entries[0].Position != 1 {
		t.Fatalf("ben position = %v", entries[0].Position)
	}
	if entries[1].StudentID != zoe {
		t.Fatalf("position 2 = %s, want zoe", entries[1].Name)
	}
	if entries[2].StudentID != ana || entries[2].Status != model.RankingStatusWaiting {
		t.Fatalf("tail = %s status %s, want ana waiting", entries[2].Name, entries[2].Status)
	}
	if entries[2].Position != nil {
		t.Fatalf("non-respondent has position %d", *entries[2].Position)
	}

	if got := e.recorder.ByType(events.TypeRankingUpdate); len(got) != 1 {
		t.Fatalf("expected 1 ranking event, got %d", len(got))
	}
}

func TestRankBreaksTiesBySubmissionTime(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	slow := e.addUser(t, "slow", model.RoleStudent)
	fast := e.addUser(t, "fast", model.RoleStudent)
	subject := e.addSubject(t, teacher, slow, fast)
	session := e.openSession(t, teacher, subject)
	activity := e.createQuiz(t, teacher, session.ID)
	e.broadcast(t, teacher, activity.ID)

	answers := model.SubmitResponseRequest{Answers: map[string]int{"0": 0, "1": 1, "2": 2}}
	if _, err := e.responseSvc.Submit(ctx, fast, activity.ID, answers); err != nil {
		t.Fatalf("fast submit: %v", err)
	}
	e.clock.Advance(5 * time.Second)
	if _, err := e.responseSvc.Submit(ctx, slow, activity.ID, answers); err != nil {
		t.Fatalf("slow submit: %v", err)
	}

	entries, err := e.rankingSvc.Rank(ctx, teacher, activity.ID)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if entries[0].StudentID != fast {
		t.Fatalf("earliest equal score should rank first, got %s", entries[0].Name)
	}
	if entries[1].StudentID != slow {
		t.Fatalf("position 2 = %s, want slow", entries[1].Name)
	}
}

func TestSummarizeComputesReport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	ace := e.addUser(t, "ace", model.RoleStudent)
	mid := e.addUser(t, "mid", model.RoleStudent)
	off := e.addUser(t, "off", model.RoleStudent)
	idle := e.addUser(t, "idle", model.RoleStudent)
	subject := e.addSubject(t, teacher, ace, mid, off, idle)
	session := e.openSession(t, teacher, subject)
	activity := e.createQuiz(t, teacher, session.ID)
	e.broadcast(t, teacher, activity.ID)

	// ace 3/3, mid 2/3, off 0/3; idle never answers.
	if _, err := e.responseSvc.Submit(ctx, ace, activity.ID, model.SubmitResponseRequest{Answers: map[string]int{"0": 0, "1": 1, "2": 2}}); err != nil {
		t.Fatalf("ace submit: %v", err)
	}
	if _, err := e.responseSvc.Submit(ctx, mid, activity.ID, model.SubmitResponseRequest{Answers: map[string]int{"0": 0, "1": 1, "2": 0}}); err != nil {
		t.Fatalf("mid submit: %v", err)
	}
	if _, err := e.responseSvc.Submit(ctx, off, activity.ID, model.SubmitResponseRequest{Answers: map[string]int{"0": 2, "1": 2, "2": 0}}); err != nil {
		t.Fatalf("off submit: %v", err)
	}

	stats, err := e.rankingSvc.Summarize(ctx, teacher, activity.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if stats.ResponseCount != 3 || stats.EnrolledCount != 4 {
		t.Fatalf("counts = %d/%d, want 3/4", stats.ResponseCount, stats.EnrolledCount)
	}
	if stats.ResponseRate != 75 {
		t.Fatalf("response rate = %f", stats.ResponseRate)
	}
	if stats.Distribution.AtLeast90 != 1 || stats.Distribution.Below50 != 1 {
		t.Fatalf("distribution = %+v", stats.Distribution)
	}
	if len(stats.QuestionStats) != 3 {
		t.Fatalf("expected 3 question stats, got %d", len(stats.QuestionStats))
	}
	// Question 0: ace and mid answered 0 (correct), off answered 2.
	if got := stats.QuestionStats[0].CorrectRate; got < 66 || got > 67 {
		t.Fatalf("question 0 correct rate = %f", got)
	}
}
