package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/focusdesk/services"
	"github.com/cppla/focusdesk/utils"
)

// StreakController exposes the user's day streak.
type StreakController struct {
	streaks *services.StreakService
}

// NewStreakController creates a StreakController.
func NewStreakController(streaks *services.StreakService) *StreakController {
	return &StreakController{streaks: streaks}
}

// Get returns the stored streak without changing it.
func (s *StreakController) Get(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	state, err := s.streaks.Get(ctx.Request.Context(), userID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, state)
}

// Update records today's activity and returns the new streak.
func (s *StreakController) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	state, err := s.streaks.Update(ctx.Request.Context(), userID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, state)
}
