package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/focusdesk/middleware"
	"github.com/cppla/focusdesk/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// requireUser returns the authenticated user id, answering 401 when absent.
func requireUser(ctx *gin.Context) (uint, bool) {
	userID, ok := getUserID(ctx)
	if !ok || userID == 0 {
		utils.Fail(ctx, utils.Unauthorized("Unauthorized"))
		return 0, false
	}
	return userID, true
}

// pathID parses the :id route parameter, answering 404 for anything that is not a positive integer.
func pathID(ctx *gin.Context, resource string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 64)
	if err != nil || id == 0 {
		utils.Fail(ctx, utils.NotFound(resource+" not found"))
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body into dst, answering 400 on malformed input.
func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		utils.Fail(ctx, utils.Validation("invalid request payload"))
		return false
	}
	return true
}

// parseDay accepts a calendar day (2006-01-02) or an RFC3339 instant and returns
// midnight of that calendar day in loc.
func parseDay(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(utils.DayLayout, value, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return utils.StartOfDay(t, loc), true
	}
	return time.Time{}, false
}

// parseInstant accepts an RFC3339 instant or a calendar day, which is read as midnight in loc.
func parseInstant(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	if t, err := time.ParseInLocation(utils.DayLayout, value, loc); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
