package models

import (
	"time"
)

// User represents a Telegram user that has contacted the bot.
// Created on first contact, touched on every interaction, never deleted.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex;not null"`

	FirstName string `gorm:"type:text"`
	LastName  string `gorm:"type:text"`
	Username  string `gorm:"type:text"`

	JoinedAt       time.Time
	LastActivityAt time.Time

	// FilesAccessed counts delivered files; incremented best-effort.
	FilesAccessed int64 `gorm:"default:0"`

	Banned   bool `gorm:"default:false"`
	BannedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the best available human-readable name.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "Unknown"
}
