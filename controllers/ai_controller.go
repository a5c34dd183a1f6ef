package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/focusdesk/ai"
	"github.com/cppla/focusdesk/utils"
)

// AIController exposes ad-hoc summarization of pasted text.
type AIController struct {
	generator ai.Generator
}

func NewAIController(generator ai.Generator) *AIController {
	if generator == nil {
		generator = ai.Unconfigured{}
	}
	return &AIController{generator: generator}
}

// Summarize returns a summary of {notes}.
func (a *AIController) Summarize(ctx *gin.Context) {
	if _, ok := requireUser(ctx); !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		utils.Fail(ctx, utils.Validation("Notes are required"))
		return
	}
	summary, err := a.generator.Summarize(ctx.Request.Context(), notes)
	if err != nil {
		utils.Fail(ctx, ai.AppError(err))
		return
	}
	utils.Success(ctx, gin.H{"summary": summary})
}
