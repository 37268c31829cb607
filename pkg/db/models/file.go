package models

import (
	"time"
)

// StoredFile represents a file registered for sharing. The actual content
// lives as a message in the archive channel; MessageID points at it.
type StoredFile struct {
	ID    uint   `gorm:"primaryKey"`
	Token string `gorm:"uniqueIndex;type:text;not null"`

	// MessageID references the origin message in the archive channel.
	MessageID int `gorm:"not null;index"`

	FileName string `gorm:"type:text"`
	FileSize int64  `gorm:"default:0"`
	FileType string `gorm:"type:text"` // document, video, photo, audio, voice, video_note
	MimeType string `gorm:"type:text"`
	Caption  string `gorm:"type:text"`

	UploadedBy int64 `gorm:"not null"`
	UploadedAt time.Time

	AccessCount int64 `gorm:"default:0"`

	// Disabled files stay in the table but resolve as not found.
	Disabled bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
