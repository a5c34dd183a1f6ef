package services

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/utils"
)

// DeepWorkSummary is the stats row plus the derived average.
type DeepWorkSummary struct {
	DailyGoalMinutes  int     `json:"dailyGoalMinutes"`
	TotalFocusMinutes float64 `json:"totalFocusMinutes"`
	SessionCount      int     `json:"sessionCount"`
	AverageMinutes    int     `json:"averageMinutes"`
}

// Summarize derives the average session length, 0 when there are no sessions.
func Summarize(stats models.DeepWorkStats) DeepWorkSummary {
	avg := 0
	if stats.SessionCount > 0 {
		avg = int(math.Round(stats.TotalFocusMinutes / float64(stats.SessionCount)))
	}
	return DeepWorkSummary{
		DailyGoalMinutes:  stats.DailyGoalMinutes,
		TotalFocusMinutes: stats.TotalFocusMinutes,
		SessionCount:      stats.SessionCount,
		AverageMinutes:    avg,
	}
}

// ClampGoal rounds minutes and bounds it to the allowed daily goal range.
func ClampGoal(minutes float64) int {
	goal := int(math.Round(minutes))
	if goal < models.MinDailyGoalMinutes {
		return models.MinDailyGoalMinutes
	}
	if goal > models.MaxDailyGoalMinutes {
		return models.MaxDailyGoalMinutes
	}
	return goal
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DeepWorkService tracks focus sessions and the daily goal.
type DeepWorkService struct {
	db       *gorm.DB
	activity *ActivityLogger
}

func NewDeepWorkService(db *gorm.DB, activity *ActivityLogger) *DeepWorkService {
	return &DeepWorkService{db: db, activity: activity}
}

// ensure creates the stats row on first use. Concurrent first requests race on
// the unique user_id; the loser's insert is a no-op.
func (s *DeepWorkService) ensure(ctx context.Context, userID uint) (models.DeepWorkStats, error) {
	db := s.db.WithContext(ctx)
	seed := models.DeepWorkStats{UserID: userID, DailyGoalMinutes: models.DefaultDailyGoalMinutes}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return models.DeepWorkStats{}, utils.Internal("failed to initialise deep work stats", err)
	}
	return s.read(ctx, userID)
}

func (s *DeepWorkService) read(ctx context.Context, userID uint) (models.DeepWorkStats, error) {
	var stats models.DeepWorkStats
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&stats).Error; err != nil {
		return models.DeepWorkStats{}, utils.Internal("failed to load deep work stats", err)
	}
	return stats, nil
}

// Stats returns the user's stats, creating the default row if needed.
func (s *DeepWorkService) Stats(ctx context.Context, userID uint) (DeepWorkSummary, error) {
	stats, err := s.ensure(ctx, userID)
	if err != nil {
		return DeepWorkSummary{}, err
	}
	return Summarize(stats), nil
}

// UpdateGoal clamps and stores a new daily goal. A nil or non-finite value leaves it unchanged.
func (s *DeepWorkService) UpdateGoal(ctx context.Context, userID uint, minutes *float64) (DeepWorkSummary, error) {
	stats, err := s.ensure(ctx, userID)
	if err != nil {
		return DeepWorkSummary{}, err
	}
	if minutes == nil || !finite(*minutes) {
		return Summarize(stats), nil
	}

	goal := ClampGoal(*minutes)
	err = s.db.WithContext(ctx).Model(&models.DeepWorkStats{}).
		Where("user_id = ?", userID).
		Update("daily_goal_minutes", goal).Error
	if err != nil {
		return DeepWorkSummary{}, utils.Internal("failed to update deep work goal", err)
	}
	stats.DailyGoalMinutes = goal
	return Summarize(stats), nil
}

// LogSession adds a completed focus session. Totals are incremented in SQL so
// concurrent sessions are never lost.
func (s *DeepWorkService) LogSession(ctx context.Context, userID uint, minutes float64) (DeepWorkSummary, error) {
	if !finite(minutes) || minutes <= 0 {
		return DeepWorkSummary{}, utils.Validation("Please provide session minutes greater than zero")
	}
	if _, err := s.ensure(ctx, userID); err != nil {
		return DeepWorkSummary{}, err
	}

	err := s.db.WithContext(ctx).Model(&models.DeepWorkStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_focus_minutes": gorm.Expr("total_focus_minutes + ?", minutes),
			"session_count":       gorm.Expr("session_count + ?", 1),
		}).Error
	if err != nil {
		return DeepWorkSummary{}, utils.Internal("failed to log deep work session", err)
	}

	stats, err := s.read(ctx, userID)
	if err != nil {
		return DeepWorkSummary{}, err
	}
	s.activity.Record(ctx, userID, models.ActivityDeepWorkSession,
		fmt.Sprintf("Deep work session: %s minutes", strconv.FormatFloat(minutes, 'f', -1, 64)))
	return Summarize(stats), nil
}
