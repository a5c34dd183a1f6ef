package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "focusdesk",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, labelled by method, route and status code.",
	}, []string{"method", "route", "status"})
	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "focusdesk",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	activityRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "focusdesk",
		Subsystem: "activity",
		Name:      "records_total",
		Help:      "Activity log appends by type and result (stored, rejected, failed).",
	}, []string{"type", "result"})
	aiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "focusdesk",
		Subsystem: "ai",
		Name:      "requests_total",
		Help:      "Generative AI calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "focusdesk",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Activity events handed to the event stream by result.",
	}, []string{"result"})
	streakRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "focusdesk",
		Subsystem: "streak",
		Name:      "cas_retries_total",
		Help:      "Streak updates that lost a version race and were recomputed.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpLatency, activityRecords, aiRequests, eventsPublished, streakRetries)
}

// ObserveHTTP records one served request. route is the gin route template, not the raw path.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordActivity counts an activity log append.
func RecordActivity(activityType, result string) {
	activityRecords.WithLabelValues(activityType, result).Inc()
}

// RecordAI counts an AI provider call.
func RecordAI(operation, outcome string) {
	aiRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordEventPublish counts an event stream write.
func RecordEventPublish(err error) {
	if err != nil {
		eventsPublished.WithLabelValues("error").Inc()
		return
	}
	eventsPublished.WithLabelValues("ok").Inc()
}

// RecordStreakRetry counts a lost optimistic-concurrency race on the streak row.
func RecordStreakRetry() {
	streakRetries.Inc()
}
