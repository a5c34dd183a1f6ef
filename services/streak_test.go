package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/testhelpers"
	"github.com/cppla/focusdesk/utils"
)

func day(s string) *string { return &s }

func TestNextScenarios(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   StreakState
		want StreakState
	}{
		{"first activity", StreakState{}, StreakState{1, 1, day("2024-05-10")}},
		{"continues from yesterday", StreakState{5, 5, day("2024-05-09")}, StreakState{6, 6, day("2024-05-10")}},
		{"gap resets", StreakState{4, 9, day("2024-05-07")}, StreakState{1, 9, day("2024-05-10")}},
		{"same day is idempotent", StreakState{3, 7, day("2024-05-10")}, StreakState{3, 7, day("2024-05-10")}},
		{"max follows current", StreakState{2, 2, day("2024-05-09")}, StreakState{3, 3, day("2024-05-10")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Next(tc.in, now, time.UTC)
			assert.Equal(t, tc.want.CurrentStreak, got.CurrentStreak)
			assert.Equal(t, tc.want.MaxStreak, got.MaxStreak)
			require.NotNil(t, got.LastActivityDate)
			assert.Equal(t, *tc.want.LastActivityDate, *got.LastActivityDate)
		})
	}
}

func TestNextUsesConfiguredLocation(t *testing.T) {
	// 02:00 UTC on the 11th is still the 10th five hours west of UTC
	west := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 5, 11, 2, 0, 0, 0, time.UTC)

	inWest := Next(StreakState{CurrentStreak: 2, MaxStreak: 2, LastActivityDate: day("2024-05-10")}, now, west)
	assert.Equal(t, 2, inWest.CurrentStreak)
	assert.Equal(t, "2024-05-10", *inWest.LastActivityDate)

	inUTC := Next(StreakState{CurrentStreak: 2, MaxStreak: 2, LastActivityDate: day("2024-05-10")}, now, time.UTC)
	assert.Equal(t, 3, inUTC.CurrentStreak)
	assert.Equal(t, "2024-05-11", *inUTC.LastActivityDate)
}

func newStreakFixture(t *testing.T, start time.Time) (*StreakService, *gorm.DB, *testhelpers.Clock, *testhelpers.RecordingPublisher) {
	t.Helper()
	db := testhelpers.NewDB(t)
	clock := testhelpers.NewClock(start)
	pub := &testhelpers.RecordingPublisher{}
	activity := NewActivityLogger(db, pub, nil)
	return NewStreakService(db, activity, time.UTC, clock.Now), db, clock, pub
}

func TestStreakUpdateAcrossDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	svc, db, clock, pub := newStreakFixture(t, start)
	user := testhelpers.CreateUser(t, db, "streak@example.com")
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		state, err := svc.Update(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, i, state.CurrentStreak)
		assert.Equal(t, i, state.MaxStreak)
		clock.Advance(24 * time.Hour)
	}

	// second call on the same day changes nothing
	clock.Advance(-24 * time.Hour)
	state, err := svc.Update(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.CurrentStreak)

	// skip two days
	clock.Advance(3 * 24 * time.Hour)
	state, err = svc.Update(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak)
	assert.Equal(t, 4, state.MaxStreak)
	assert.Equal(t, "2024-01-07", *state.LastActivityDate)

	stored, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, state, stored)

	var count int64
	require.NoError(t, db.Model(&models.ActivityRecord{}).
		Where("user_id = ? AND type = ?", user.ID, models.ActivityStreakUpdated).
		Count(&count).Error)
	assert.EqualValues(t, 6, count)
	assert.Len(t, pub.Events, 6)
	assert.Equal(t, "Streak updated: 1 days", pub.Events[5].Description)
}

func TestStreakMissingUser(t *testing.T) {
	svc, _, _, _ := newStreakFixture(t, time.Now())

	_, err := svc.Update(context.Background(), 999)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = svc.Get(context.Background(), 999)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestStreakGetFreshUser(t *testing.T) {
	svc, db, _, _ := newStreakFixture(t, time.Now())
	user := testhelpers.CreateUser(t, db, "fresh@example.com")

	state, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentStreak)
	assert.Equal(t, 0, state.MaxStreak)
	assert.Nil(t, state.LastActivityDate)
}

func TestStreakUpdateRetriesOnStaleVersion(t *testing.T) {
	svc, db, _, _ := newStreakFixture(t, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC))
	user := testhelpers.CreateUser(t, db, "race@example.com")

	// a concurrent writer bumps the version between our read and our write, once
	raced := false
	err := db.Callback().Update().Before("gorm:update").Register("test:race", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "users" {
			return
		}
		raced = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE users SET streak_version = streak_version + 1 WHERE id = ?", user.ID)
	})
	require.NoError(t, err)

	state, err := svc.Update(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, raced)
	assert.Equal(t, 1, state.CurrentStreak)

	var stored models.User
	require.NoError(t, db.Take(&stored, user.ID).Error)
	assert.Equal(t, 1, stored.CurrentStreak)
	assert.Equal(t, 2, stored.StreakVersion)
}
