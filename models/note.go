package models

import "time"

// Note is study material owned by a user, with its last AI summary and quiz.
type Note struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"index:idx_note_user_created,priority:1;not null" json:"userId"`
	Title              string     `gorm:"size:255;not null" json:"title"`
	Content            string     `gorm:"type:text;not null" json:"content"`
	Subject            string     `gorm:"size:128;index" json:"subject,omitempty"`
	Tags               StringList `gorm:"type:text" json:"tags"`
	Summary            string     `gorm:"type:text" json:"summary,omitempty"`
	SummaryGeneratedAt *time.Time `json:"summaryGeneratedAt,omitempty"`
	Quiz               Quiz       `gorm:"type:text" json:"quiz"`
	CreatedAt          time.Time  `gorm:"index:idx_note_user_created,priority:2" json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}
