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

// TaskController manages the user's tasks and the weekly view built from them.
type TaskController struct {
	db       *gorm.DB
	activity *services.ActivityLogger
	weekly   *services.WeeklyService
	cache    *utils.Cache
	loc      *time.Location
	now      func() time.Time
}

// NewTaskController creates a TaskController.
func NewTaskController(db *gorm.DB, activity *services.ActivityLogger, weekly *services.WeeklyService, cache *utils.Cache, loc *time.Location, now func() time.Time) *TaskController {
	if now == nil {
		now = time.Now
	}
	return &TaskController{db: db, activity: activity, weekly: weekly, cache: cache, loc: loc, now: now}
}

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

func (t *TaskController) findOwned(ctx *gin.Context, userID, id uint) (*models.Task, bool) {
	var task models.Task
	err := t.db.WithContext(ctx.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Take(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, utils.NotFound("Task not found"))
		return nil, false
	}
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to load task", err))
		return nil, false
	}
	return &task, true
}

// List returns tasks filtered by ?status= and ?dueDate= (a calendar day), ordered by due date.
func (t *TaskController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	query := t.db.WithContext(ctx.Request.Context()).Where("user_id = ?", userID)
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if due := ctx.Query("dueDate"); due != "" {
		day, ok := parseDay(due, t.loc)
		if !ok {
			utils.Fail(ctx, utils.Validation("dueDate must be a date"))
			return
		}
		query = query.Where("due_date >= ? AND due_date < ?", day.UTC(), utils.AddDays(day, 1).UTC())
	}

	tasks := []models.Task{}
	if err := query.Order("due_date ASC").Order("created_at ASC").Order("id ASC").Find(&tasks).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to load tasks", err))
		return
	}
	utils.Success(ctx, tasks)
}

// PendingToday returns the open tasks due today.
func (t *TaskController) PendingToday(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	start := utils.StartOfDay(t.now(), t.loc)
	end := utils.AddDays(start, 1)

	tasks := []models.Task{}
	err := t.db.WithContext(ctx.Request.Context()).
		Where("user_id = ? AND status IN ? AND due_date >= ? AND due_date < ?",
			userID, []models.TaskStatus{models.TaskPending, models.TaskInProgress}, start.UTC(), end.UTC()).
		Order("due_date ASC").Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to load tasks", err))
		return
	}
	utils.Success(ctx, gin.H{"count": len(tasks), "tasks": tasks})
}

// Week returns the seven day activity and task buckets ending today.
func (t *TaskController) Week(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	week, err := t.weekly.Week(ctx.Request.Context(), userID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, week)
}

// Create adds a task. Title and dueDate are required.
func (t *TaskController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req taskRequest
	if !bindJSON(ctx, &req) {
		return
	}

	title := ""
	if req.Title != nil {
		title = utils.Sanitize(*req.Title)
	}
	if title == "" || req.DueDate == nil || *req.DueDate == "" {
		utils.Fail(ctx, utils.Validation("Title and due date are required"))
		return
	}
	due, ok := parseInstant(*req.DueDate, t.loc)
	if !ok {
		utils.Fail(ctx, utils.Validation("dueDate must be a date"))
		return
	}

	task := models.Task{
		UserID:   userID,
		Title:    title,
		DueDate:  due,
		Status:   models.TaskPending,
		Priority: models.PriorityMedium,
	}
	if req.Description != nil {
		task.Description = utils.Sanitize(*req.Description)
	}
	if !applyStatusPriority(ctx, &task, req) {
		return
	}

	if err := t.db.WithContext(ctx.Request.Context()).Create(&task).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to create task", err))
		return
	}
	services.InvalidateWeek(ctx.Request.Context(), t.cache, userID)
	t.activity.Record(ctx.Request.Context(), userID, models.ActivityTaskCreated, fmt.Sprintf("Created task: %s", task.Title))
	utils.Created(ctx, task)
}

// Update changes the provided fields. The first transition into completed is logged.
func (t *TaskController) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Task")
	if !ok {
		return
	}
	var req taskRequest
	if !bindJSON(ctx, &req) {
		return
	}
	task, ok := t.findOwned(ctx, userID, id)
	if !ok {
		return
	}

	wasCompleted := task.Status == models.TaskCompleted
	if req.Title != nil {
		if title := utils.Sanitize(*req.Title); title != "" {
			task.Title = title
		}
	}
	if req.Description != nil {
		task.Description = utils.Sanitize(*req.Description)
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, ok := parseInstant(*req.DueDate, t.loc)
		if !ok {
			utils.Fail(ctx, utils.Validation("dueDate must be a date"))
			return
		}
		task.DueDate = due
	}
	if !applyStatusPriority(ctx, task, req) {
		return
	}

	if err := t.db.WithContext(ctx.Request.Context()).Save(task).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to update task", err))
		return
	}
	services.InvalidateWeek(ctx.Request.Context(), t.cache, userID)
	if task.Status == models.TaskCompleted && !wasCompleted {
		t.activity.Record(ctx.Request.Context(), userID, models.ActivityTaskCompleted, fmt.Sprintf("Completed task: %s", task.Title))
	}
	utils.Success(ctx, task)
}

// Delete removes a task owned by the user.
func (t *TaskController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Task")
	if !ok {
		return
	}
	task, ok := t.findOwned(ctx, userID, id)
	if !ok {
		return
	}
	if err := t.db.WithContext(ctx.Request.Context()).Where("user_id = ?", userID).Delete(&models.Task{}, task.ID).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to delete task", err))
		return
	}
	services.InvalidateWeek(ctx.Request.Context(), t.cache, userID)
	t.activity.Record(ctx.Request.Context(), userID, models.ActivityTaskDeleted, fmt.Sprintf("Deleted task: %s", task.Title))
	utils.Success(ctx, gin.H{"message": "Task deleted successfully"})
}

func applyStatusPriority(ctx *gin.Context, task *models.Task, req taskRequest) bool {
	if req.Status != nil && *req.Status != "" {
		status := models.TaskStatus(*req.Status)
		if !status.IsValid() {
			utils.Fail(ctx, utils.Validation("status must be one of pending, in-progress, completed"))
			return false
		}
		task.Status = status
	}
	if req.Priority != nil && *req.Priority != "" {
		priority := models.TaskPriority(*req.Priority)
		if !priority.IsValid() {
			utils.Fail(ctx, utils.Validation("priority must be one of low, medium, high"))
			return false
		}
		task.Priority = priority
	}
	return true
}
