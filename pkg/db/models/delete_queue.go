package models

import (
	"time"
)

// DeleteQueueEntry is a pending auto-delete for a delivered message.
// The (ChatID, MessageID) pair is unique while pending; rescheduling the same
// pair replaces the due time. Rows are removed once the deletion has been
// attempted, whether or not the remote message still existed.
type DeleteQueueEntry struct {
	ID uint `gorm:"primaryKey"`

	ChatID    int64 `gorm:"not null;uniqueIndex:idx_chat_message"`
	MessageID int   `gorm:"not null;uniqueIndex:idx_chat_message"`

	DeleteAt  time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
