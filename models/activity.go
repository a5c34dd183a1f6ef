package models

import "time"

// ActivityType is the closed set of actions recorded in the activity log.
type ActivityType string

const (
	ActivityTaskCompleted     ActivityType = "task_completed"
	ActivityTaskCreated       ActivityType = "task_created"
	ActivityTaskDeleted       ActivityType = "task_deleted"
	ActivityScheduleAdded     ActivityType = "schedule_added"
	ActivityScheduleCompleted ActivityType = "schedule_completed"
	ActivityScheduleDeleted   ActivityType = "schedule_deleted"
	ActivityMilestoneAdded    ActivityType = "milestone_added"
	ActivityOverviewAdded     ActivityType = "overview_added"
	ActivityStreakUpdated     ActivityType = "streak_updated"
	ActivitySummaryGenerated  ActivityType = "summary_generated"
	ActivityDeepWorkSession   ActivityType = "deepwork_session"
)

// ActivityTypes lists every valid ActivityType.
var ActivityTypes = []ActivityType{
	ActivityTaskCompleted,
	ActivityTaskCreated,
	ActivityTaskDeleted,
	ActivityScheduleAdded,
	ActivityScheduleCompleted,
	ActivityScheduleDeleted,
	ActivityMilestoneAdded,
	ActivityOverviewAdded,
	ActivityStreakUpdated,
	ActivitySummaryGenerated,
	ActivityDeepWorkSession,
}

// IsValid reports whether t belongs to the closed set.
func (t ActivityType) IsValid() bool {
	for _, known := range ActivityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ActivityRecord is an immutable audit entry. Rows are only ever inserted.
type ActivityRecord struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"index:idx_activity_user_date,priority:1;not null" json:"userId"`
	Type        ActivityType `gorm:"size:32;not null" json:"type"`
	Description string       `gorm:"size:512;not null" json:"description"`
	Date        time.Time    `gorm:"index:idx_activity_user_date,priority:2;not null" json:"date"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// TableName keeps the historical collection name.
func (ActivityRecord) TableName() string {
	return "activities"
}
