// Package scoring grades activity responses. Each activity kind binds a
// Scorer; kinds without one (summaries, open questions, presentation
// content) record a zero score and are ranked by submission time only.
package scoring

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/classcast/classcast-backend/internal/model"
)

// Result is the outcome of grading one response.
type Result struct {
	Score      int
	Total      int
	Percentage float64
}

// Scorer grades a raw response payload against an activity's payload.
type Scorer interface {
	Score(activity *model.Activity, responsePayload json.RawMessage) (Result, error)
}

// Registry maps activity kinds to their scorer.
type Registry struct {
	scorers map[model.ActivityKind]Scorer
}

// NewRegistry returns a registry with the default kind bindings.
func NewRegistry() *Registry {
	return &Registry{
		scorers: map[model.ActivityKind]Scorer{
			model.ActivityKindQuiz: QuizScorer{},
		},
	}
}

// Register binds a scorer to a kind, replacing any existing binding.
func (r *Registry) Register(kind model.ActivityKind, s Scorer) {
	r.scorers[kind] = s
}

// ForKind returns the scorer bound to a kind, or the zero scorer.
func (r *Registry) ForKind(kind model.ActivityKind) Scorer {
	if s, ok := r.scorers[kind]; ok {
		return s
	}
	return NoScore{}
}

// NoScore records score=total=0 for kinds that are not graded.
type NoScore struct{}

func (NoScore) Score(*model.Activity, json.RawMessage) (Result, error) {
	return Result{}, nil
}

// QuizScorer counts answers whose chosen option index matches the stored
// correct index. Questions are addressed by their position in the quiz
// payload.
type QuizScorer struct{}

func (QuizScorer) Score(activity *model.Activity, responsePayload json.RawMessage) (Result, error) {
	quiz, err := activity.Quiz()
	if err != nil {
		return Result{}, fmt.Errorf("decode quiz payload: %w", err)
	}

	var answers model.QuizAnswers
	if len(responsePayload) > 0 {
		if err := json.Unmarshal(responsePayload, &answers); err != nil {
			return Result{}, fmt.Errorf("decode answers: %w", err)
		}
	}

	total := len(quiz.Questions)
	if total == 0 {
		return Result{}, nil
	}

	correct := 0
	for i, q := range quiz.Questions {
		chosen, ok := answers.Answers[strconv.Itoa(i)]
		if ok && chosen == q.Correct {
			correct++
		}
	}

	return Result{
		Score:      correct,
		Total:      total,
		Percentage: float64(correct) / float64(total) * 100,
	}, nil
}
