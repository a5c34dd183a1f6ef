// Package services holds the stateful dashboard engines: the activity log,
// streaks, deep-work stats and the weekly aggregation.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/events"
	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/observability"
	"github.com/cppla/focusdesk/utils"
)

const publishTimeout = 3 * time.Second

// ActivityLogger appends entries to the activity log. It never fails the caller:
// write errors are logged and dropped.
type ActivityLogger struct {
	db        *gorm.DB
	publisher events.Publisher
	cache     *utils.Cache
	now       func() time.Time
}

func NewActivityLogger(db *gorm.DB, publisher events.Publisher, cache *utils.Cache) *ActivityLogger {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ActivityLogger{db: db, publisher: publisher, cache: cache, now: time.Now}
}

// WithClock replaces the time source used to stamp records.
func (l *ActivityLogger) WithClock(now func() time.Time) *ActivityLogger {
	if now != nil {
		l.now = now
	}
	return l
}

// Record stores one activity for userID and forwards it to the event stream.
func (l *ActivityLogger) Record(ctx context.Context, userID uint, activityType models.ActivityType, description string) {
	if !activityType.IsValid() {
		observability.RecordActivity(string(activityType), "rejected")
		utils.Logger.Warn("activity type rejected",
			zap.Uint("user_id", userID),
			zap.String("type", string(activityType)),
		)
		return
	}

	record := models.ActivityRecord{
		UserID:      userID,
		Type:        activityType,
		Description: description,
		Date:        l.now().UTC(),
	}
	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		observability.RecordActivity(string(activityType), "failed")
		utils.Logger.Warn("activity log write failed",
			zap.Uint("user_id", userID),
			zap.String("type", string(activityType)),
			zap.Error(err),
		)
		return
	}
	observability.RecordActivity(string(activityType), "stored")
	InvalidateWeek(ctx, l.cache, userID)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := l.publisher.Publish(pubCtx, events.NewActivityEvent(userID, string(activityType), description, record.Date))
	observability.RecordEventPublish(err)
	if err != nil {
		utils.Logger.Warn("activity event publish failed",
			zap.Uint("user_id", userID),
			zap.String("type", string(activityType)),
			zap.Error(err),
		)
	}
}

// Recent returns the latest activity records for userID, newest first.
func (l *ActivityLogger) Recent(ctx context.Context, userID uint, limit int) ([]models.ActivityRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	limit = min(limit, 100)
	var records []models.ActivityRecord
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, utils.Internal("failed to load activity", err)
	}
	return records, nil
}
