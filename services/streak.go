package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/observability"
	"github.com/cppla/focusdesk/utils"
)

const maxStreakAttempts = 5

// StreakState is the persisted streak triple.
type StreakState struct {
	CurrentStreak    int     `json:"currentStreak"`
	MaxStreak        int     `json:"maxStreak"`
	LastActivityDate *string `json:"lastActivityDate"`
}

// Next applies one streak update at now. Days are calendar days in loc.
func Next(state StreakState, now time.Time, loc *time.Location) StreakState {
	today := utils.DayKey(now, loc)
	yesterday := utils.PreviousDayKey(now, loc)

	next := state
	switch {
	case state.LastActivityDate == nil || *state.LastActivityDate == yesterday:
		next.CurrentStreak = state.CurrentStreak + 1
	case *state.LastActivityDate != today:
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.MaxStreak {
		next.MaxStreak = next.CurrentStreak
	}
	next.LastActivityDate = &today
	return next
}

// StreakService reads and advances user streaks.
type StreakService struct {
	db       *gorm.DB
	activity *ActivityLogger
	loc      *time.Location
	now      func() time.Time
}

func NewStreakService(db *gorm.DB, activity *ActivityLogger, loc *time.Location, now func() time.Time) *StreakService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &StreakService{db: db, activity: activity, loc: loc, now: now}
}

type streakRow struct {
	ID               uint
	CurrentStreak    int
	MaxStreak        int
	LastActivityDate *string
	StreakVersion    int
}

func (s *StreakService) load(ctx context.Context, userID uint) (streakRow, error) {
	var row streakRow
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id", "current_streak", "max_streak", "last_activity_date", "streak_version").
		Where("id = ?", userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, utils.NotFound("User not found")
	}
	if err != nil {
		return row, utils.Internal("failed to load streak", err)
	}
	return row, nil
}

// Get returns the stored streak without changing it.
func (s *StreakService) Get(ctx context.Context, userID uint) (StreakState, error) {
	row, err := s.load(ctx, userID)
	if err != nil {
		return StreakState{}, err
	}
	return StreakState{
		CurrentStreak:    row.CurrentStreak,
		MaxStreak:        row.MaxStreak,
		LastActivityDate: row.LastActivityDate,
	}, nil
}

// Update advances the streak for today. The write is a compare-and-swap on
// streak_version; a lost race re-reads and recomputes.
func (s *StreakService) Update(ctx context.Context, userID uint) (StreakState, error) {
	for attempt := 0; attempt < maxStreakAttempts; attempt++ {
		row, err := s.load(ctx, userID)
		if err != nil {
			return StreakState{}, err
		}

		now := s.now()
		next := Next(StreakState{
			CurrentStreak:    row.CurrentStreak,
			MaxStreak:        row.MaxStreak,
			LastActivityDate: row.LastActivityDate,
		}, now, s.loc)

		res := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND streak_version = ?", userID, row.StreakVersion).
			Updates(map[string]interface{}{
				"current_streak":     next.CurrentStreak,
				"max_streak":         next.MaxStreak,
				"last_activity_date": *next.LastActivityDate,
				"streak_version":     gorm.Expr("streak_version + 1"),
				"updated_at":         now.UTC(),
			})
		if res.Error != nil {
			return StreakState{}, utils.Internal("failed to update streak", res.Error)
		}
		if res.RowsAffected == 1 {
			s.activity.Record(ctx, userID, models.ActivityStreakUpdated,
				fmt.Sprintf("Streak updated: %d days", next.CurrentStreak))
			return next, nil
		}
		observability.RecordStreakRetry()
	}
	return StreakState{}, utils.Internal("failed to update streak", errors.New("streak version contention"))
}
