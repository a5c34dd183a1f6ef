package models

import "time"

// Overview is a label/value card on the dashboard.
type Overview struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Label     string    `gorm:"size:128;not null" json:"label"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
