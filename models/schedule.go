package models

import "time"

// Schedule is a time slot on a given day, optionally tied to a task.
type Schedule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Time      string    `gorm:"size:64;not null" json:"time"`
	Detail    string    `gorm:"type:text" json:"detail"`
	Date      time.Time `gorm:"index" json:"date"`
	TaskID    *uint     `json:"taskId"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
