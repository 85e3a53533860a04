package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/classcast/classcast-backend/internal/model"
)

// ErrTranscriptTooShort signals that the source material cannot yield
// any questions or a summary.
var ErrTranscriptTooShort = errors.New("transcript too short to generate content")

// ContentGenerator produces quiz and summary payloads from a session's
// transcript. The default implementation is deterministic; an external
// generator can be swapped in without touching the services.
type ContentGenerator interface {
	GenerateQuiz(ctx context.Context, transcript string, numQuestions int) (model.QuizPayload, error)
	GenerateSummary(ctx context.Context, transcript string) (model.SummaryPayload, error)
}

// StaticGenerator builds content from the transcript text alone. Quiz
// questions are keyword fill-in-the-blanks: a sentence with its most
// distinctive word removed, the removed word hidden among keywords from
// other sentences. Summaries keep the leading sentences up to a word
// budget.
type StaticGenerator struct {
	// SummaryWordBudget caps summary length. Zero means the default of
	// 120 words.
	SummaryWordBudget int
}

const (
	minSentenceWords     = 5
	minKeywordLength     = 5
	quizOptionCount      = 4
	defaultSummaryBudget = 120
	defaultQuizQuestions = 5
)

func (g StaticGenerator) GenerateQuiz(_ context.Context, transcript string, numQuestions int) (model.QuizPayload, error) {
	if numQuestions <= 0 {
		numQuestions = defaultQuizQuestions
	}

	sentences := splitSentences(transcript)
	type candidate struct {
		sentence string
		keyword  string
	}
	var candidates []candidate
	for _, sentence := range sentences {
		words := strings.Fields(sentence)
		if len(words) < minSentenceWords {
			continue
		}
		keyword := pickKeyword(words)
		if keyword == "" {
			continue
		}
		candidates = append(candidates, candidate{sentence: sentence, keyword: keyword})
	}
	if len(candidates) < quizOptionCount {
		return model.QuizPayload{}, ErrTranscriptTooShort
	}

	if len(candidates) > numQuestions {
		candidates = candidates[:numQuestions]
	}

	// Option pool from every candidate keyword, so distractors come from
	// the same material.
	pool := make([]string, len(candidates))
	for i, c := range candidates {
		pool[i] = c.keyword
	}

	quiz := model.QuizPayload{Questions: make([]model.QuizQuestion, len(candidates))}
	for i, c := range candidates {
		options := pickOptions(pool, c.keyword, quizOptionCount)
		correct := 0
		for j, opt := range options {
			if opt == c.keyword {
				correct = j
				break
			}
		}
		blanked := replaceWord(c.sentence, c.keyword)
		quiz.Questions[i] = model.QuizQuestion{
			Question: fmt.Sprintf("Fill in the blank: %s", blanked),
			Options:  options,
			Correct:  correct,
		}
	}
	return quiz, nil
}

func (g StaticGenerator) GenerateSummary(_ context.Context, transcript string) (model.SummaryPayload, error) {
	budget := g.SummaryWordBudget
	if budget <= 0 {
		budget = defaultSummaryBudget
	}

	sentences := splitSentences(transcript)
	if len(sentences) == 0 {
		return model.SummaryPayload{}, ErrTranscriptTooShort
	}

	var out []string
	used := 0
	for _, sentence := range sentences {
		words := len(strings.Fields(sentence))
		if used > 0 && used+words > budget {
			break
		}
		out = append(out, sentence)
		used += words
	}
	return model.SummaryPayload{SummaryText: strings.Join(out, " ")}, nil
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// pickKeyword returns the longest word of at least minKeywordLength
// letters, ties broken by first occurrence.
func pickKeyword(words []string) string {
	best := ""
	for _, w := range words {
		cleaned := strings.Trim(w, ".,!?;:\"'()")
		if len(cleaned) >= minKeywordLength && len(cleaned) > len(best) {
			best = cleaned
		}
	}
	return best
}

// pickOptions selects n options including the answer, in a stable
// alphabetical order so generation stays deterministic.
func pickOptions(pool []string, answer string, n int) []string {
	seen := map[string]struct{}{answer: {}}
	options := []string{answer}
	for _, w := range pool {
		if len(options) == n {
			break
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		options = append(options, w)
	}
	sort.Strings(options)
	return options
}

func replaceWord(sentence, word string) string {
	words := strings.Fields(sentence)
	for i, w := range words {
		if strings.Trim(w, ".,!?;:\"'()") == word {
			words[i] = "_____"
			break
		}
	}
	return strings.Join(words, " ")
}
