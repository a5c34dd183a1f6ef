package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/testhelpers"
	"github.com/cppla/focusdesk/utils"
)

func TestWeekWindow(t *testing.T) {
	now := time.Date(2024, 3, 14, 18, 45, 0, 0, time.UTC)
	start, end := WeekWindow(now, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), end)
}

func TestBuildWeekShape(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC) // a Thursday
	week := BuildWeek(now, time.UTC, nil, nil)

	require.Len(t, week, 7)
	assert.Equal(t, "2024-03-08", week[0].Date)
	assert.Equal(t, "Fri", week[0].Day)
	assert.Equal(t, "2024-03-14", week[6].Date)
	assert.Equal(t, "Thu", week[6].Day)
	for _, b := range week {
		assert.Zero(t, b.Total)
	}
}

func TestBuildWeekCounts(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	activities := []models.ActivityRecord{
		{Date: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 3, 13, 23, 59, 59, 0, time.UTC)},
		{Date: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC)}, // before the window
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},   // after the window
	}
	tasks := []models.Task{
		{DueDate: time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC), Status: models.TaskCompleted},
		{DueDate: time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC), Status: models.TaskPending},
		{DueDate: time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC), Status: models.TaskInProgress},
		{DueDate: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), Status: models.TaskPending},
	}

	week := BuildWeek(now, time.UTC, activities, tasks)

	assert.Equal(t, DayBucket{Day: "Thu", Date: "2024-03-14", Total: 3, Completed: 1, Pending: 1, Activities: 1}, week[6])
	assert.Equal(t, DayBucket{Day: "Wed", Date: "2024-03-13", Total: 1, Activities: 1}, week[5])
	assert.Equal(t, DayBucket{Day: "Tue", Date: "2024-03-12", Total: 1, Pending: 1}, week[4])
	assert.Equal(t, 1, week[0].Activities)

	completed, pending, total := 0, 0, 0
	for _, b := range week {
		completed += b.Completed
		pending += b.Pending
		total += b.Total
		assert.Equal(t, b.Total, b.Activities+b.Completed+b.Pending)
	}
	assert.Equal(t, 3, completed+pending)
	assert.Equal(t, 6, total)
}

func TestBuildWeekHonoursLocation(t *testing.T) {
	east := time.FixedZone("UTC+9", 9*60*60)
	// 20:00 UTC on the 13th is already the 14th in UTC+9
	now := time.Date(2024, 3, 13, 20, 0, 0, 0, time.UTC)
	activities := []models.ActivityRecord{
		{Date: time.Date(2024, 3, 13, 16, 0, 0, 0, time.UTC)}, // 01:00 on the 14th in UTC+9
		{Date: time.Date(2024, 3, 13, 14, 0, 0, 0, time.UTC)}, // 23:00 on the 13th in UTC+9
	}

	week := BuildWeek(now, east, activities, nil)
	assert.Equal(t, "2024-03-14", week[6].Date)
	assert.Equal(t, 1, week[6].Activities)
	assert.Equal(t, 1, week[5].Activities)

	utcWeek := BuildWeek(now, time.UTC, activities, nil)
	assert.Equal(t, "2024-03-13", utcWeek[6].Date)
	assert.Equal(t, 2, utcWeek[6].Activities)
}

func TestWeeklyServiceQueriesWindow(t *testing.T) {
	db := testhelpers.NewDB(t)
	user := testhelpers.CreateUser(t, db, "week@example.com")
	other := testhelpers.CreateUser(t, db, "other@example.com")
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

	rows := []models.ActivityRecord{
		{UserID: user.ID, Type: models.ActivityTaskCreated, Description: "a", Date: time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)},
		{UserID: user.ID, Type: models.ActivityTaskCreated, Description: "b", Date: time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC)},
		{UserID: other.ID, Type: models.ActivityTaskCreated, Description: "c", Date: time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, db.Create(&rows).Error)
	tasks := []models.Task{
		{UserID: user.ID, Title: "done", DueDate: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), Status: models.TaskCompleted, Priority: models.PriorityLow},
		{UserID: user.ID, Title: "open", DueDate: time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC), Status: models.TaskPending, Priority: models.PriorityLow},
	}
	require.NoError(t, db.Create(&tasks).Error)

	svc := NewWeeklyService(db, nil, time.UTC, func() time.Time { return now })
	week, err := svc.Week(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, week, 7)

	assert.Equal(t, 1, week[6].Activities)
	assert.Equal(t, "2024-03-10", week[2].Date)
	assert.Equal(t, 1, week[2].Completed)
	assert.Equal(t, 1, week[2].Pending)
	assert.Equal(t, 2, week[2].Total)
}

func TestWeeklyServiceCacheFollowsWrites(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewDB(t)
	user := testhelpers.CreateUser(t, db, "cached@example.com")
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	mr := miniredis.RunT(t)
	cache := utils.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	svc := NewWeeklyService(db, cache, time.UTC, func() time.Time { return now })

	week, err := svc.Week(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, week[6].Total)

	task := models.Task{UserID: user.ID, Title: "t", DueDate: now, Status: models.TaskPending, Priority: models.PriorityLow}
	require.NoError(t, db.Create(&task).Error)

	// served from cache until the write retires it
	week, err = svc.Week(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, week[6].Total)

	InvalidateWeek(ctx, cache, user.ID)
	week, err = svc.Week(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, week[6].Total)
	assert.Equal(t, 1, week[6].Pending)
}

func TestWeeklyServiceIgnoresFillFromRetiredGeneration(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewDB(t)
	user := testhelpers.CreateUser(t, db, "race@example.com")
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	mr := miniredis.RunT(t)
	cache := utils.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	svc := NewWeeklyService(db, cache, time.UTC, func() time.Time { return now })

	task := models.Task{UserID: user.ID, Title: "t", DueDate: now, Status: models.TaskCompleted, Priority: models.PriorityLow}
	require.NoError(t, db.Create(&task).Error)
	InvalidateWeek(ctx, cache, user.ID)

	// a reader that loaded before the write stores its stale view under generation 0
	stale := BuildWeek(now, time.UTC, nil, nil)
	cache.SetJSON(ctx, weekCacheKey(user.ID, 0, "2024-03-14"), stale, time.Minute)

	week, err := svc.Week(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, week[6].Completed)
}
