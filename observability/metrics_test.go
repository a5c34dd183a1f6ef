package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveHTTPLabelsUnmatchedRoutes(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	ObserveHTTP("GET", "", 404, 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecordEventPublish(t *testing.T) {
	ok := testutil.ToFloat64(eventsPublished.WithLabelValues("ok"))
	failed := testutil.ToFloat64(eventsPublished.WithLabelValues("error"))

	RecordEventPublish(nil)
	RecordEventPublish(errors.New("broker down"))

	assert.Equal(t, ok+1, testutil.ToFloat64(eventsPublished.WithLabelValues("ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(eventsPublished.WithLabelValues("error")))
}

func TestCountersIncrement(t *testing.T) {
	retries := testutil.ToFloat64(streakRetries)
	RecordStreakRetry()
	assert.Equal(t, retries+1, testutil.ToFloat64(streakRetries))

	stored := testutil.ToFloat64(activityRecords.WithLabelValues("task_created", "stored"))
	RecordActivity("task_created", "stored")
	assert.Equal(t, stored+1, testutil.ToFloat64(activityRecords.WithLabelValues("task_created", "stored")))

	calls := testutil.ToFloat64(aiRequests.WithLabelValues("quiz", "ok"))
	RecordAI("quiz", "ok")
	assert.Equal(t, calls+1, testutil.ToFloat64(aiRequests.WithLabelValues("quiz", "ok")))
}
