package scoring_test

import (
	"encoding/json"
	"testing"

	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/scoring"
)

func quizActivity() *model.Activity {
	return &model.Activity{
		Kind: model.ActivityKindQuiz,
		Payload: json.RawMessage(`{"questions":[
			{"question":"Q1","options":["a","b","c"],"correct":0},
			{"question":"Q2","options":["a","b","c"],"correct":1},
			{"question":"Q3","options":["a","b","c"],"correct":2}
		]}`),
	}
}

func answersPayload(t *testing.T, answers map[string]int) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(model.QuizAnswers{Answers: answers})
	if err != nil {
		t.Fatalf("marshal answers: %v", err)
	}
	return raw
}

func TestQuizScorerCountsMatches(t *testing.T) {
	result, err := scoring.QuizScorer{}.Score(quizActivity(), answersPayload(t, map[string]int{"0": 0, "1": 1, "2": 0}))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Score != 2 || result.Total != 3 {
		t.Fatalf("got %d/%d, want 2/3", result.Score, result.Total)
	}
	if result.Percentage < 66.6 || result.Percentage > 66.7 {
		t.Fatalf("percentage = %f", result.Percentage)
	}
}

func TestQuizScorerIgnoresUnknownIndexes(t *testing.T) {
	result, err := scoring.QuizScorer{}.Score(quizActivity(), answersPayload(t, map[string]int{"7": 0, "-1": 1}))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Score != 0 || result.Total != 3 {
		t.Fatalf("got %d/%d, want 0/3", result.Score, result.Total)
	}
}

func TestQuizScorerEmptySubmission(t *testing.T) {
	result, err := scoring.QuizScorer{}.Score(quizActivity(), answersPayload(t, nil))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Score != 0 || result.Total != 3 || result.Percentage != 0 {
		t.Fatalf("got %+v", result)
	}
}

func TestQuizScorerEmptyQuiz(t *testing.T) {
	activity := &model.Activity{Kind: model.ActivityKindQuiz, Payload: json.RawMessage(`{"questions":[]}`)}
	result, err := scoring.QuizScorer{}.Score(activity, answersPayload(t, map[string]int{"0": 0}))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result != (scoring.Result{}) {
		t.Fatalf("expected zero result, got %+v", result)
	}
}

func TestRegistryBindings(t *testing.T) {
	reg := scoring.NewRegistry()

	if _, ok := reg.ForKind(model.ActivityKindQuiz).(scoring.QuizScorer); !ok {
		t.Fatal("quiz kind must bind QuizScorer")
	}
	for _, kind := range []model.ActivityKind{model.ActivityKindSummary, model.ActivityKindOpenQuestion, model.ActivityKindCustom} {
		if _, ok := reg.ForKind(kind).(scoring.NoScore); !ok {
			t.Fatalf("%s must bind NoScore", kind)
		}
	}

	result, err := reg.ForKind(model.ActivityKindOpenQuestion).Score(&model.Activity{}, nil)
	if err != nil {
		t.Fatalf("no-score: %v", err)
	}
	if result.Score != 0 || result.Total != 0 {
		t.Fatalf("ungraded kinds record zero, got %+v", result)
	}
}
