package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/focusdesk/services"
	"github.com/cppla/focusdesk/utils"
)

// DeepWorkController serves focus-session stats.
type DeepWorkController struct {
	deepWork *services.DeepWorkService
}

// NewDeepWorkController creates a DeepWorkController.
func NewDeepWorkController(deepWork *services.DeepWorkService) *DeepWorkController {
	return &DeepWorkController{deepWork: deepWork}
}

// Get returns stats, creating the default row on first use.
func (d *DeepWorkController) Get(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	summary, err := d.deepWork.Stats(ctx.Request.Context(), userID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, summary)
}

// UpdateGoal sets the daily goal when dailyGoalMinutes is a number and leaves it alone otherwise.
func (d *DeepWorkController) UpdateGoal(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	body, ok := readObject(ctx)
	if !ok {
		return
	}
	goal, _ := numberField(body, "dailyGoalMinutes", false)
	summary, err := d.deepWork.UpdateGoal(ctx.Request.Context(), userID, goal)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, summary)
}

// LogSession adds a focus session of {minutes}.
func (d *DeepWorkController) LogSession(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	body, ok := readObject(ctx)
	if !ok {
		return
	}
	minutes, _ := numberField(body, "minutes", true)
	if minutes == nil {
		utils.Fail(ctx, utils.Validation("Please provide session minutes greater than zero"))
		return
	}
	summary, err := d.deepWork.LogSession(ctx.Request.Context(), userID, *minutes)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, summary)
}

// readObject decodes an optional JSON object body.
// An empty body, or valid JSON that is not an object, reads as an empty object.
func readObject(ctx *gin.Context) (map[string]json.RawMessage, bool) {
	raw, err := io.ReadAll(io.LimitReader(ctx.Request.Body, 1<<20))
	if err != nil {
		utils.Fail(ctx, utils.Validation("invalid request payload"))
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]json.RawMessage{}, true
	}
	if !json.Valid(raw) {
		utils.Fail(ctx, utils.Validation("invalid request payload"))
		return nil, false
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return map[string]json.RawMessage{}, true
	}
	return body, true
}

// numberField reads key as a JSON number. With allowString, numeric strings such as "45" are accepted too.
func numberField(body map[string]json.RawMessage, key string, allowString bool) (*float64, bool) {
	raw, ok := body[key]
	if !ok {
		return nil, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, true
	}
	if !allowString {
		return nil, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}
