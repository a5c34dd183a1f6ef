package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/focusdesk/services"
	"github.com/cppla/focusdesk/utils"
)

// ActivityController lists the user's recent activity log entries.
type ActivityController struct {
	activity *services.ActivityLogger
}

func NewActivityController(activity *services.ActivityLogger) *ActivityController {
	return &ActivityController{activity: activity}
}

// Recent returns up to ?limit= entries (default 20), newest first.
func (a *ActivityController) Recent(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	records, err := a.activity.Recent(ctx.Request.Context(), userID, limit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, records)
}
