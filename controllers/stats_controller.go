package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/utils"
)

// StatsController provides dashboard counters for the signed-in user.
type StatsController struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB, loc *time.Location, now func() time.Time) *StatsController {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &StatsController{db: db, loc: loc, now: now}
}

type taskCount struct {
	Status models.TaskStatus
	Total  int64
}

// GetStats returns task totals by status and today's counts.
func (s *StatsController) GetStats(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	db := s.db.WithContext(ctx.Request.Context())
	start := utils.StartOfDay(s.now(), s.loc)
	end := utils.AddDays(start, 1)

	byStatus := map[models.TaskStatus]int64{
		models.TaskPending:    0,
		models.TaskInProgress: 0,
		models.TaskCompleted:  0,
	}
	var rows []taskCount
	if err := db.Model(&models.Task{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err == nil {
		for _, r := range rows {
			byStatus[r.Status] = r.Total
		}
	}

	// counters fall back to 0 instead of failing the whole endpoint
	var notes, milestones, schedulesToday, activityToday int64
	if err := db.Model(&models.Note{}).Where("user_id = ?", userID).Count(&notes).Error; err != nil {
		notes = 0
	}
	if err := db.Model(&models.Milestone{}).Where("user_id = ?", userID).Count(&milestones).Error; err != nil {
		milestones = 0
	}
	if err := db.Model(&models.Schedule{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start.UTC(), end.UTC()).
		Count(&schedulesToday).Error; err != nil {
		schedulesToday = 0
	}
	if err := db.Model(&models.ActivityRecord{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start.UTC(), end.UTC()).
		Count(&activityToday).Error; err != nil {
		activityToday = 0
	}

	utils.Success(ctx, gin.H{
		"tasks": gin.H{
			"pending":    byStatus[models.TaskPending],
			"inProgress": byStatus[models.TaskInProgress],
			"completed":  byStatus[models.TaskCompleted],
		},
		"notes":          notes,
		"milestones":     milestones,
		"schedulesToday": schedulesToday,
		"activityToday":  activityToday,
	})
}
