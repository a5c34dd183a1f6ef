package models

import "time"

const (
	DefaultDailyGoalMinutes = 180
	MinDailyGoalMinutes     = 15
	MaxDailyGoalMinutes     = 720
)

// DeepWorkStats aggregates focus sessions. There is at most one row per user.
type DeepWorkStats struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	UserID            uint      `gorm:"uniqueIndex;not null" json:"-"`
	DailyGoalMinutes  int       `gorm:"not null;default:180" json:"dailyGoalMinutes"`
	TotalFocusMinutes float64   `gorm:"not null;default:0" json:"totalFocusMinutes"`
	SessionCount      int       `gorm:"not null;default:0" json:"sessionCount"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// TableName keeps the historical collection name.
func (DeepWorkStats) TableName() string {
	return "deep_work"
}
