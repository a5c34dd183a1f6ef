package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/testhelpers"
	"github.com/cppla/focusdesk/utils"
)

func TestClampGoal(t *testing.T) {
	assert.Equal(t, 15, ClampGoal(5))
	assert.Equal(t, 720, ClampGoal(1000))
	assert.Equal(t, 90, ClampGoal(90))
	assert.Equal(t, 91, ClampGoal(90.6))
	assert.Equal(t, 15, ClampGoal(-40))
}

func TestSummarizeAverage(t *testing.T) {
	assert.Equal(t, 0, Summarize(models.DeepWorkStats{}).AverageMinutes)
	assert.Equal(t, 33, Summarize(models.DeepWorkStats{TotalFocusMinutes: 100, SessionCount: 3}).AverageMinutes)
	assert.Equal(t, 45, Summarize(models.DeepWorkStats{TotalFocusMinutes: 45, SessionCount: 1}).AverageMinutes)
}

func newDeepWorkFixture(t *testing.T) (*DeepWorkService, uint, *testhelpers.RecordingPublisher) {
	t.Helper()
	db := testhelpers.NewDB(t)
	user := testhelpers.CreateUser(t, db, "focus@example.com")
	pub := &testhelpers.RecordingPublisher{}
	return NewDeepWorkService(db, NewActivityLogger(db, pub, nil)), user.ID, pub
}

func TestDeepWorkStatsDefaults(t *testing.T) {
	svc, uid, _ := newDeepWorkFixture(t)
	ctx := context.Background()

	first, err := svc.Stats(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, DeepWorkSummary{DailyGoalMinutes: 180}, first)

	// a second read must not create another row
	second, err := svc.Stats(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeepWorkLogSession(t *testing.T) {
	svc, uid, pub := newDeepWorkFixture(t)
	ctx := context.Background()

	_, err := svc.LogSession(ctx, uid, -5)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	_, err = svc.LogSession(ctx, uid, 0)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	_, err = svc.LogSession(ctx, uid, math.NaN())
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Empty(t, pub.Events)

	got, err := svc.LogSession(ctx, uid, 45)
	require.NoError(t, err)
	assert.Equal(t, DeepWorkSummary{DailyGoalMinutes: 180, TotalFocusMinutes: 45, SessionCount: 1, AverageMinutes: 45}, got)

	got, err = svc.LogSession(ctx, uid, 30.5)
	require.NoError(t, err)
	assert.Equal(t, 75.5, got.TotalFocusMinutes)
	assert.Equal(t, 2, got.SessionCount)
	assert.Equal(t, 38, got.AverageMinutes)

	assert.Equal(t, []string{"deepwork_session", "deepwork_session"}, pub.Types())
	assert.Equal(t, "Deep work session: 30.5 minutes", pub.Events[1].Description)
}

func TestDeepWorkUpdateGoal(t *testing.T) {
	svc, uid, _ := newDeepWorkFixture(t)
	ctx := context.Background()

	low := 5.0
	got, err := svc.UpdateGoal(ctx, uid, &low)
	require.NoError(t, err)
	assert.Equal(t, 15, got.DailyGoalMinutes)

	high := 1000.0
	got, err = svc.UpdateGoal(ctx, uid, &high)
	require.NoError(t, err)
	assert.Equal(t, 720, got.DailyGoalMinutes)

	got, err = svc.UpdateGoal(ctx, uid, nil)
	require.NoError(t, err)
	assert.Equal(t, 720, got.DailyGoalMinutes)

	inf := math.Inf(1)
	got, err = svc.UpdateGoal(ctx, uid, &inf)
	require.NoError(t, err)
	assert.Equal(t, 720, got.DailyGoalMinutes)

	stored, err := svc.Stats(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 720, stored.DailyGoalMinutes)
}
