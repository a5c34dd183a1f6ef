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

// OverviewController manages the label/value cards on the dashboard.
type OverviewController struct {
	db       *gorm.DB
	activity *services.ActivityLogger
}

func NewOverviewController(db *gorm.DB, activity *services.ActivityLogger) *OverviewController {
	return &OverviewController{db: db, activity: activity}
}

type overviewRequest struct {
	Label *string `json:"label"`
	Value *string `json:"value"`
}

func (o *OverviewController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	items := []models.Overview{}
	err := o.db.WithContext(ctx.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to load overview", err))
		return
	}
	utils.Success(ctx, items)
}

func (o *OverviewController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req overviewRequest
	if !bindJSON(ctx, &req) {
		return
	}
	var label, value string
	if req.Label != nil {
		label = utils.Sanitize(*req.Label)
	}
	if req.Value != nil {
		value = utils.Sanitize(*req.Value)
	}
	if label == "" || value == "" {
		utils.Fail(ctx, utils.Validation("Label and value are required"))
		return
	}

	item := models.Overview{UserID: userID, Label: label, Value: value}
	if err := o.db.WithContext(ctx.Request.Context()).Create(&item).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to create overview", err))
		return
	}
	o.activity.Record(ctx.Request.Context(), userID, models.ActivityOverviewAdded, fmt.Sprintf("Added overview: %s", item.Label))
	utils.Created(ctx, item)
}

func (o *OverviewController) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Overview item")
	if !ok {
		return
	}
	var req overviewRequest
	if !bindJSON(ctx, &req) {
		return
	}

	var item models.Overview
	err := o.db.WithContext(ctx.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, utils.NotFound("Overview item not found"))
		return
	}
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to load overview", err))
		return
	}

	if req.Label != nil {
		if label := utils.Sanitize(*req.Label); label != "" {
			item.Label = label
		}
	}
	if req.Value != nil {
		if value := utils.Sanitize(*req.Value); value != "" {
			item.Value = value
		}
	}
	if err := o.db.WithContext(ctx.Request.Context()).Save(&item).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to update overview", err))
		return
	}
	utils.Success(ctx, item)
}

func (o *OverviewController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Overview item")
	if !ok {
		return
	}
	res := o.db.WithContext(ctx.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Overview{})
	if res.Error != nil {
		utils.Fail(ctx, utils.Internal("failed to delete overview", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(ctx, utils.NotFound("Overview item not found"))
		return
	}
	utils.Success(ctx, gin.H{"message": "Overview item deleted successfully"})
}
