package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/services"
	"github.com/cppla/focusdesk/utils"
)

const (
	defaultScheduleTime   = "Custom"
	defaultScheduleDetail = "Tap to edit details"
)

// ScheduleController manages day schedule entries.
type ScheduleController struct {
	db       *gorm.DB
	activity *services.ActivityLogger
	loc      *time.Location
	now      func() time.Time
}

// NewScheduleController creates a ScheduleController.
func NewScheduleController(db *gorm.DB, activity *services.ActivityLogger, loc *time.Location, now func() time.Time) *ScheduleController {
	if now == nil {
		now = time.Now
	}
	return &ScheduleController{db: db, activity: activity, loc: loc, now: now}
}

type scheduleRequest struct {
	Title     *string `json:"title"`
	Time      *string `json:"time"`
	Detail    *string `json:"detail"`
	Date      *string `json:"date"`
	TaskID    *uint   `json:"taskId"`
	Completed *bool   `json:"completed"`
}

// List returns schedules, optionally restricted to one calendar day with ?date=.
func (s *ScheduleController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	query := s.db.WithContext(ctx.Request.Context()).Where("user_id = ?", userID)
	if date := ctx.Query("date"); date != "" {
		day, ok := parseDay(date, s.loc)
		if !ok {
			utils.Fail(ctx, utils.Validation("date must be a date"))
			return
		}
		query = query.Where("date >= ? AND date < ?", day.UTC(), utils.AddDays(day, 1).UTC())
	}

	schedules := []models.Schedule{}
	if err := query.Order("date ASC").Order("created_at ASC").Order("id ASC").Find(&schedules).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to load schedules", err))
		return
	}
	utils.Success(ctx, schedules)
}

// Create adds a schedule entry. Only title is required.
func (s *ScheduleController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req scheduleRequest
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

	schedule := models.Schedule{
		UserID: userID,
		Title:  title,
		Time:   defaultScheduleTime,
		Detail: defaultScheduleDetail,
		Date:   s.now().UTC(),
		TaskID: req.TaskID,
	}
	if req.Time != nil && utils.Sanitize(*req.Time) != "" {
		schedule.Time = utils.Sanitize(*req.Time)
	}
	if req.Detail != nil && utils.Sanitize(*req.Detail) != "" {
		schedule.Detail = utils.Sanitize(*req.Detail)
	}
	if req.Date != nil && *req.Date != "" {
		date, ok := parseInstant(*req.Date, s.loc)
		if !ok {
			utils.Fail(ctx, utils.Validation("date must be a date"))
			return
		}
		schedule.Date = date
	}
	if req.Completed != nil {
		schedule.Completed = *req.Completed
	}

	if err := s.db.WithContext(ctx.Request.Context()).Create(&schedule).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to create schedule", err))
		return
	}
	s.activity.Record(ctx.Request.Context(), userID, models.ActivityScheduleAdded, fmt.Sprintf("Added schedule: %s", schedule.Title))
	utils.Created(ctx, schedule)
}

// Update changes the provided fields. Marking an entry completed is logged once.
func (s *ScheduleController) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Schedule")
	if !ok {
		return
	}
	var req scheduleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	schedule, ok := s.findOwned(ctx, userID, id)
	if !ok {
		return
	}

	wasCompleted := schedule.Completed
	if req.Title != nil {
		if title := utils.Sanitize(*req.Title); title != "" {
			schedule.Title = title
		}
	}
	if req.Time != nil {
		if t := utils.Sanitize(*req.Time); t != "" {
			schedule.Time = t
		}
	}
	if req.Detail != nil {
		schedule.Detail = utils.Sanitize(*req.Detail)
	}
	if req.Date != nil && *req.Date != "" {
		date, ok := parseInstant(*req.Date, s.loc)
		if !ok {
			utils.Fail(ctx, utils.Validation("date must be a date"))
			return
		}
		schedule.Date = date
	}
	if req.TaskID != nil {
		schedule.TaskID = req.TaskID
	}
	if req.Completed != nil {
		schedule.Completed = *req.Completed
	}

	if err := s.db.WithContext(ctx.Request.Context()).Save(schedule).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to update schedule", err))
		return
	}
	if schedule.Completed && !wasCompleted {
		s.activity.Record(ctx.Request.Context(), userID, models.ActivityScheduleCompleted, fmt.Sprintf("Completed schedule: %s", schedule.Title))
	}
	utils.Success(ctx, schedule)
}

// Delete removes a schedule entry owned by the user.
func (s *ScheduleController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Schedule")
	if !ok {
		return
	}
	schedule, ok := s.findOwned(ctx, userID, id)
	if !ok {
		return
	}
	if err := s.db.WithContext(ctx.Request.Context()).Where("user_id = ?", userID).Delete(&models.Schedule{}, schedule.ID).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to delete schedule", err))
		return
	}
	s.activity.Record(ctx.Request.Context(), userID, models.ActivityScheduleDeleted, fmt.Sprintf("Deleted schedule: %s", schedule.Title))
	utils.Success(ctx, gin.H{"message": "Schedule deleted successfully"})
}

func (s *ScheduleController) findOwned(ctx *gin.Context, userID, id uint) (*models.Schedule, bool) {
	var schedule models.Schedule
	err := s.db.WithContext(ctx.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Take(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, utils.NotFound("Schedule not found"))
		return nil, false
	}
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to load schedule", err))
		return nil, false
	}
	return &schedule, true
}
