package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account. Passwords are stored as bcrypt hashes only; Google accounts may have none.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:128;not null" json:"name"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"size:255" json:"-"`
	GoogleID         *string   `gorm:"size:255;uniqueIndex" json:"-"`
	CurrentStreak    int       `gorm:"not null;default:0" json:"currentStreak"`
	MaxStreak        int       `gorm:"not null;default:0" json:"maxStreak"`
	LastActivityDate *string   `gorm:"size:10" json:"lastActivityDate"`
	StreakVersion    int       `gorm:"not null;default:0" json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now().UTC()
	return nil
}
