package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/observability"
	"github.com/cppla/focusdesk/utils"
)

const (
	summarySystemPrompt = "You are a helpful assistant that summarizes notes, lecture content, research snippets, and meeting notes. " +
		"Create concise, well-structured summaries with key takeaways. " +
		"Format your response with clear sections and bullet points where appropriate."
	quizSystemPrompt = "You are a study assistant that writes multiple-choice quizzes from study notes. " +
		"Respond with JSON only, shaped as " +
		`{"questions":[{"question":"...","options":["...","...","...","..."],"answerIndex":0}]}. ` +
		"Write 5 questions. Every question has exactly 4 options and answerIndex is the 0-based index of the correct option."
)

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

// NewGenerator returns a Gemini generator, or Unconfigured when apiKey is empty.
func NewGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (Generator, error) {
	if apiKey == "" {
		return Unconfigured{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gemini{models: client.Models, model: model, timeout: timeout}, nil
}

// Summarize returns a structured summary of text.
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	prompt := "Please summarize the following notes and extract the key insights:\n\n" + text
	summary, err := g.generate(ctx, "summarize", summarySystemPrompt, prompt, false)
	observability.RecordAI("summarize", outcome(err))
	return summary, err
}

// Quiz returns a validated multiple-choice quiz built from text.
func (g *Gemini) Quiz(ctx context.Context, text string) ([]models.QuizQuestion, error) {
	prompt := "Create a quiz from the following notes:\n\n" + text
	raw, err := g.generate(ctx, "quiz", quizSystemPrompt, prompt, true)
	if err != nil {
		observability.RecordAI("quiz", outcome(err))
		return nil, err
	}
	questions, err := ParseQuiz(raw)
	observability.RecordAI("quiz", outcome(err))
	return questions, err
}

func (g *Gemini) generate(ctx context.Context, operation, system, prompt string, jsonOutput bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
	}
	if jsonOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		classified := classify(err)
		utils.Logger.Warn("gemini request failed",
			zap.String("operation", operation),
			zap.String("model", g.model),
			zap.Error(err),
		)
		return "", classified
	}
	if blocked(resp) {
		return "", ErrSafetyBlocked
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrInvalidOutput)
	}
	return text, nil
}

func blocked(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return true
	}
	for _, c := range resp.Candidates {
		if c != nil && c.FinishReason == genai.FinishReasonSafety {
			return true
		}
	}
	return false
}

// classify turns SDK errors into the package sentinels, keeping the cause.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: credentials rejected: %w", ErrUpstream, err)
	default:
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}
