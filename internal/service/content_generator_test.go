package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/classcast/classcast-backend/internal/service"
)

const lectureTranscript = "Photosynthesis converts sunlight into chemical energy inside chloroplasts. " +
	"Mitochondria release that stored energy through cellular respiration processes. " +
	"Enzymes accelerate the countless reactions keeping organisms alive together. " +
	"Ribosomes assemble proteins following instructions carried by messenger molecules. " +
	"Membranes regulate which substances enter and leave every living cell."

func TestStaticGeneratorQuizIsDeterministic(t *testing.T) {
	gen := service.StaticGenerator{}
	ctx := context.Background()

	first, err := gen.GenerateQuiz(ctx, lectureTranscript, 4)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := gen.GenerateQuiz(ctx, lectureTranscript, 4)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(first.Questions) != len(second.Questions) {
		t.Fatalf("question counts differ: %d vs %d", len(first.Questions), len(second.Questions))
	}
	for i := range first.Questions {
		if first.Questions[i].Question != second.Questions[i].Question {
			t.Fatalf("question %d differs between runs", i)
		}
		if first.Questions[i].Correct != second.Questions[i].Correct {
			t.Fatalf("answer %d differs between runs", i)
		}
	}
}

func TestStaticGeneratorQuizShape(t *testing.T) {
	quiz, err := service.StaticGenerator{}.GenerateQuiz(context.Background(), lectureTranscript, 4)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(quiz.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		if !strings.Contains(q.Question, "_____") {
			t.Fatalf("question %d has no blank: %q", i, q.Question)
		}
		if len(q.Options) < 2 {
			t.Fatalf("question %d has %d options", i, len(q.Options))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			t.Fatalf("question %d: correct index %d out of range", i, q.Correct)
		}
		// The blanked word must be among the options.
		answer := q.Options[q.Correct]
		if strings.Contains(q.Question, answer) {
			t.Fatalf("question %d still contains its answer %q", i, answer)
		}
	}
}

func TestStaticGeneratorQuizTooShort(t *testing.T) {
	_, err := service.StaticGenerator{}.GenerateQuiz(context.Background(), "One tiny line.", 0)
	if !errors.Is(err, service.ErrTranscriptTooShort) {
		t.Fatalf("expected ErrTranscriptTooShort, got %v", err)
	}
}

func TestStaticGeneratorSummaryBudget(t *testing.T) {
	gen := service.StaticGenerator{SummaryWordBudget: 20}

	summary, err := gen.GenerateSummary(context.Background(), lectureTranscript)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	words := len(strings.Fields(summary.SummaryText))
	if words == 0 {
		t.Fatal("summary is empty")
	}
	// The budget may be exceeded only by the first sentence.
	if words > 20 {
		t.Fatalf("summary has %d words over a 20-word budget", words)
	}
	if !strings.HasPrefix(summary.SummaryText, "Photosynthesis") {
		t.Fatalf("summary must keep the leading sentences: %q", summary.SummaryText)
	}
}

func TestStaticGeneratorSummaryEmptyTranscript(t *testing.T) {
	_, err := service.StaticGenerator{}.GenerateSummary(context.Background(), "   ")
	if !errors.Is(err, service.ErrTranscriptTooShort) {
		t.Fatalf("expected ErrTranscriptTooShort, got %v", err)
	}
}
