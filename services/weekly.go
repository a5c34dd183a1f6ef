package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/utils"
)

const (
	weekDays          = 7
	weekCacheTTL      = time.Minute
	weekGenerationTTL = 24 * time.Hour
)

// DayBucket is one calendar day of the weekly view.
type DayBucket struct {
	Day        string `json:"day"`
	Date       string `json:"date"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Pending    int    `json:"pending"`
	Activities int    `json:"activities"`
}

// WeekWindow returns [start, end): midnight six days before now's day, through the next midnight.
func WeekWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	today := utils.StartOfDay(now, loc)
	return utils.AddDays(today, -(weekDays - 1)), utils.AddDays(today, 1)
}

// BuildWeek buckets activities and tasks into the seven days ending today, oldest first.
// Records outside the window are ignored.
func BuildWeek(now time.Time, loc *time.Location, activities []models.ActivityRecord, tasks []models.Task) []DayBucket {
	start, _ := WeekWindow(now, loc)

	buckets := make([]DayBucket, weekDays)
	index := make(map[string]int, weekDays)
	for i := 0; i < weekDays; i++ {
		day := utils.AddDays(start, i)
		key := day.Format(utils.DayLayout)
		buckets[i] = DayBucket{Day: day.Format("Mon"), Date: key}
		index[key] = i
	}

	for _, a := range activities {
		if i, ok := index[utils.DayKey(a.Date, loc)]; ok {
			buckets[i].Activities++
			buckets[i].Total++
		}
	}
	for _, t := range tasks {
		i, ok := index[utils.DayKey(t.DueDate, loc)]
		if !ok {
			continue
		}
		buckets[i].Total++
		if t.Status == models.TaskCompleted {
			buckets[i].Completed++
		} else {
			buckets[i].Pending++
		}
	}
	return buckets
}

func weekGenerationKey(userID uint) string {
	return fmt.Sprintf("cache:week:%d:gen", userID)
}

// weekCacheKey scopes a cached view to the user's write generation and the calendar day.
func weekCacheKey(userID uint, generation int64, day string) string {
	return fmt.Sprintf("cache:week:%d:g%d:%s", userID, generation, day)
}

// InvalidateWeek retires every cached weekly view of userID.
// A fill that raced the write lands under the old generation and is never read.
func InvalidateWeek(ctx context.Context, cache *utils.Cache, userID uint) {
	cache.BumpGeneration(ctx, weekGenerationKey(userID), weekGenerationTTL)
}

// WeeklyService serves the seven-day activity view.
type WeeklyService struct {
	db    *gorm.DB
	cache *utils.Cache
	loc   *time.Location
	now   func() time.Time
}

func NewWeeklyService(db *gorm.DB, cache *utils.Cache, loc *time.Location, now func() time.Time) *WeeklyService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &WeeklyService{db: db, cache: cache, loc: loc, now: now}
}

// Week returns the seven day buckets ending today.
func (s *WeeklyService) Week(ctx context.Context, userID uint) ([]DayBucket, error) {
	now := s.now()
	key := weekCacheKey(userID, s.cache.Generation(ctx, weekGenerationKey(userID)), utils.DayKey(now, s.loc))

	var cached []DayBucket
	if s.cache.GetJSON(ctx, key, &cached) && len(cached) == weekDays {
		return cached, nil
	}

	start, end := WeekWindow(now, s.loc)
	db := s.db.WithContext(ctx)

	var activities []models.ActivityRecord
	if err := db.Select("id", "date").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start.UTC(), end.UTC()).
		Find(&activities).Error; err != nil {
		return nil, utils.Internal("failed to load activity", err)
	}

	var tasks []models.Task
	if err := db.Select("id", "due_date", "status").
		Where("user_id = ? AND due_date >= ? AND due_date < ?", userID, start.UTC(), end.UTC()).
		Find(&tasks).Error; err != nil {
		return nil, utils.Internal("failed to load tasks", err)
	}

	week := BuildWeek(now, s.loc, activities, tasks)
	s.cache.SetJSON(ctx, key, week, weekCacheTTL)
	return week, nil
}
