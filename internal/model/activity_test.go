package model_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/classcast/classcast-backend/internal/model"
)

func liveActivity(limit int) *model.Activity {
	broadcastAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	deadline := broadcastAt.Add(time.Duration(limit) * time.Second)
	return &model.Activity{
		Status:           model.ActivityStatusActive,
		TimeLimitSeconds: &limit,
		BroadcastAt:      &broadcastAt,
		Deadline:         &deadline,
	}
}

func TestIsLiveWindow(t *testing.T) {
	a := liveActivity(300)
	start := *a.BroadcastAt

	if !a.IsLive(start) {
		t.Fatal("live at broadcast instant")
	}
	if !a.IsLive(start.Add(299 * time.Second)) {
		t.Fatal("live one second before the deadline")
	}
	if a.IsLive(start.Add(300 * time.Second)) {
		t.Fatal("not live at the deadline")
	}
	if a.IsLive(start.Add(301 * time.Second)) {
		t.Fatal("not live past the deadline")
	}
}

func TestIsLiveRequiresActiveStatus(t *testing.T) {
	a := liveActivity(300)
	at := a.BroadcastAt.Add(time.Second)

	a.Status = model.ActivityStatusWaiting
	if a.IsLive(at) {
		t.Fatal("waiting is never live")
	}
	a.Status = model.ActivityStatusEnded
	if a.IsLive(at) {
		t.Fatal("ended is never live")
	}
}

func TestIsLiveWithoutDeadline(t *testing.T) {
	a := &model.Activity{Status: model.ActivityStatusActive}
	if !a.IsLive(time.Now().Add(24 * time.Hour)) {
		t.Fatal("no deadline means live until ended")
	}
}

func TestTimeRemaining(t *testing.T) {
	a := liveActivity(300)
	start := *a.BroadcastAt

	if got := a.TimeRemaining(start); got != 300 {
		t.Fatalf("at broadcast: %d, want 300", got)
	}
	if got := a.TimeRemaining(start.Add(100 * time.Second)); got != 200 {
		t.Fatalf("after 100s: %d, want 200", got)
	}
	if got := a.TimeRemaining(start.Add(300 * time.Second)); got != 0 {
		t.Fatalf("at deadline: %d, want 0", got)
	}
	if got := a.TimeRemaining(start.Add(400 * time.Second)); got != 0 {
		t.Fatalf("past deadline: %d, never negative", got)
	}
}

func TestConsumerViewStripsAnswerKey(t *testing.T) {
	a := &model.Activity{
		Kind: model.ActivityKindQuiz,
		Payload: json.RawMessage(`{"questions":[
			{"question":"Q1","options":["a","b"],"correct":1},
			{"question":"Q2","options":["c","d"],"correct":0}
		]}`),
	}

	view, err := a.ConsumerView()
	if err != nil {
		t.Fatalf("consumer view: %v", err)
	}
	if strings.Contains(string(view.Payload), "correct") {
		t.Fatalf("answer key leaked: %s", view.Payload)
	}

	var stripped struct {
		Questions []struct {
			Question string   `json:"question"`
			Options  []string `json:"options"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(view.Payload, &stripped); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(stripped.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(stripped.Questions))
	}
	if stripped.Questions[0].Question != "Q1" || len(stripped.Questions[0].Options) != 2 {
		t.Fatalf("question mangled: %+v", stripped.Questions[0])
	}

	// The original payload is untouched.
	if !strings.Contains(string(a.Payload), "correct") {
		t.Fatal("original payload was mutated")
	}
}

func TestConsumerViewPassesNonQuizThrough(t *testing.T) {
	a := &model.Activity{
		Kind:    model.ActivityKindSummary,
		Payload: json.RawMessage(`{"summary_text":"All of it."}`),
	}
	view, err := a.ConsumerView()
	if err != nil {
		t.Fatalf("consumer view: %v", err)
	}
	if string(view.Payload) != string(a.Payload) {
		t.Fatalf("summary payload changed: %s", view.Payload)
	}
}
