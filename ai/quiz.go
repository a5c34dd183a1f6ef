package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cppla/focusdesk/models"
)

const quizOptionCount = 4

// wireQuestion mirrors models.QuizQuestion with a pointer index so a missing answerIndex is caught.
type wireQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex *int     `json:"answerIndex"`
}

// ParseQuiz decodes a provider answer of the form {"questions":[...]} and validates it.
// Markdown code fences around the JSON are tolerated.
func ParseQuiz(raw string) ([]models.QuizQuestion, error) {
	body := stripFences(raw)

	var payload struct {
		Questions []wireQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("%w: quiz is not valid JSON: %v", ErrInvalidOutput, err)
	}

	questions := make([]models.QuizQuestion, 0, len(payload.Questions))
	for i, w := range payload.Questions {
		if w.AnswerIndex == nil {
			return nil, fmt.Errorf("%w: question %d has no answer index", ErrInvalidOutput, i+1)
		}
		q := models.QuizQuestion{
			Question:    strings.TrimSpace(w.Question),
			Options:     make([]string, len(w.Options)),
			AnswerIndex: *w.AnswerIndex,
		}
		for j, opt := range w.Options {
			q.Options[j] = strings.TrimSpace(opt)
		}
		questions = append(questions, q)
	}
	if err := ValidateQuiz(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ValidateQuiz enforces at least one question, four non-blank options each and an answer index in range.
func ValidateQuiz(questions []models.QuizQuestion) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", ErrInvalidOutput)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("%w: question %d is empty", ErrInvalidOutput, i+1)
		}
		if len(q.Options) != quizOptionCount {
			return fmt.Errorf("%w: question %d has %d options", ErrInvalidOutput, i+1, len(q.Options))
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("%w: question %d option %d is empty", ErrInvalidOutput, i+1, j+1)
			}
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= quizOptionCount {
			return fmt.Errorf("%w: question %d answer index %d out of range", ErrInvalidOutput, i+1, q.AnswerIndex)
		}
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
