package models

import "time"

// Milestone is a longer-term goal.
type Milestone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Detail    string    `gorm:"type:text;not null" json:"detail"`
	State     string    `gorm:"size:32;not null;default:Planned" json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
