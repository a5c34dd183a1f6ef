package testhelpers

import (
	"context"
	"sync"

	"github.com/cppla/focusdesk/models"
)

// FakeGenerator returns canned AI output and records the text it was given.
type FakeGenerator struct {
	mu sync.Mutex

	Summary   string
	Questions []models.QuizQuestion
	Err       error
	Inputs    []string
}

func (g *FakeGenerator) Summarize(_ context.Context, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Inputs = append(g.Inputs, text)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Summary, nil
}

func (g *FakeGenerator) Quiz(_ context.Context, text string) ([]models.QuizQuestion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Inputs = append(g.Inputs, text)
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Questions, nil
}

// SampleQuiz is a valid one-question quiz.
func SampleQuiz() []models.QuizQuestion {
	return []models.QuizQuestion{{
		Question:    "Which planet is closest to the sun?",
		Options:     []string{"Venus", "Mercury", "Earth", "Mars"},
		AnswerIndex: 1,
	}}
}
