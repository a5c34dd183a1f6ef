// Package ai generates note summaries and quizzes through a generative AI provider.
package ai

import (
	"context"
	"errors"
	"net/http"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/utils"
)

var (
	// ErrNotConfigured means no provider credentials were supplied.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrRateLimited means the provider rejected the call for quota reasons.
	ErrRateLimited = errors.New("ai provider rate limit reached")
	// ErrSafetyBlocked means the provider refused the prompt or the answer on safety grounds.
	ErrSafetyBlocked = errors.New("ai provider blocked the content")
	// ErrInvalidOutput means the provider answered but the answer could not be used.
	ErrInvalidOutput = errors.New("ai provider returned unusable output")
	// ErrUpstream covers every other provider failure.
	ErrUpstream = errors.New("ai provider request failed")
)

// Generator is the AI collaborator used by the notes and AI handlers.
type Generator interface {
	Summarize(ctx context.Context, text string) (string, error)
	Quiz(ctx context.Context, text string) ([]models.QuizQuestion, error)
}

// Unconfigured answers every call with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Summarize(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) Quiz(context.Context, string) ([]models.QuizQuestion, error) {
	return nil, ErrNotConfigured
}

// AppError maps a generator error onto the HTTP error taxonomy.
func AppError(err error) *utils.AppError {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return utils.Unavailable("AI service is not configured. Please set GEMINI_API_KEY.")
	case errors.Is(err, ErrRateLimited):
		return utils.Upstream(http.StatusTooManyRequests, "AI service rate limit reached, please retry later", err)
	case errors.Is(err, ErrSafetyBlocked):
		return utils.Upstream(http.StatusBadRequest, "The AI service declined to process this content", err)
	case errors.Is(err, context.DeadlineExceeded):
		return utils.Upstream(http.StatusInternalServerError, "AI service timed out, please retry", err)
	default:
		return utils.Upstream(http.StatusInternalServerError, "Failed to generate AI content. Please try again.", err)
	}
}

// outcome labels a result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotConfigured):
		return "unconfigured"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrSafetyBlocked):
		return "blocked"
	case errors.Is(err, ErrInvalidOutput):
		return "invalid_output"
	default:
		return "error"
	}
}
