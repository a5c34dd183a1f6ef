package controllers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/services"
	"github.com/cppla/focusdesk/utils"
)

const (
	defaultMilestoneDetail = "Details coming soon"
	defaultMilestoneState  = "Planned"
)

// MilestoneController manages long-term goals.
type MilestoneController struct {
	db       *gorm.DB
	activity *services.ActivityLogger
}

func NewMilestoneController(db *gorm.DB, activity *services.ActivityLogger) *MilestoneController {
	return &MilestoneController{db: db, activity: activity}
}

type milestoneRequest struct {
	Title  *string `json:"title"`
	Detail *string `json:"detail"`
	State  *string `json:"state"`
}

func (m *MilestoneController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	milestones := []models.Milestone{}
	err := m.db.WithContext(ctx.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&milestones).Error
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to load milestones", err))
		return
	}
	utils.Success(ctx, milestones)
}

func (m *MilestoneController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req milestoneRequest
	if !bindJSON(ctx, &req) {
		return
	}
	title := ""
	if req.Title != nil {
		title = utils.Sanitize(*req.Title)
	}
	if title == "" {
		utils.Fail(ctx, utils.Validation("Title is required"))
		return
	}

	milestone := models.Milestone{
		UserID: userID,
		Title:  title,
		Detail: defaultMilestoneDetail,
		State:  defaultMilestoneState,
	}
	if req.Detail != nil && utils.Sanitize(*req.Detail) != "" {
		milestone.Detail = utils.Sanitize(*req.Detail)
	}
	if req.State != nil && utils.Sanitize(*req.State) != "" {
		milestone.State = utils.Sanitize(*req.State)
	}

	if err := m.db.WithContext(ctx.Request.Context()).Create(&milestone).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to create milestone", err))
		return
	}
	m.activity.Record(ctx.Request.Context(), userID, models.ActivityMilestoneAdded, fmt.Sprintf("Added milestone: %s", milestone.Title))
	utils.Created(ctx, milestone)
}

func (m *MilestoneController) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Milestone")
	if !ok {
		return
	}
	var req milestoneRequest
	if !bindJSON(ctx, &req) {
		return
	}
	milestone, ok := m.findOwned(ctx, userID, id)
	if !ok {
		return
	}

	if req.Title != nil {
		if title := utils.Sanitize(*req.Title); title != "" {
			milestone.Title = title
		}
	}
	if req.Detail != nil {
		milestone.Detail = utils.Sanitize(*req.Detail)
	}
	if req.State != nil {
		if state := utils.Sanitize(*req.State); state != "" {
			milestone.State = state
		}
	}

	if err := m.db.WithContext(ctx.Request.Context()).Save(milestone).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to update milestone", err))
		return
	}
	utils.Success(ctx, milestone)
}

func (m *MilestoneController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Milestone")
	if !ok {
		return
	}
	res := m.db.WithContext(ctx.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Milestone{})
	if res.Error != nil {
		utils.Fail(ctx, utils.Internal("failed to delete milestone", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(ctx, utils.NotFound("Milestone not found"))
		return
	}
	utils.Success(ctx, gin.H{"message": "Milestone deleted successfully"})
}

func (m *MilestoneController) findOwned(ctx *gin.Context, userID, id uint) (*models.Milestone, bool) {
	var milestone models.Milestone
	err := m.db.WithContext(ctx.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Take(&milestone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, utils.NotFound("Milestone not found"))
		return nil, false
	}
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to load milestone", err))
		return nil, false
	}
	return &milestone, true
}
