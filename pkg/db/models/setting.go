package models

import (
	"time"
)

// Setting is an admin-controlled key/value pair, upserted by configuration
// commands at runtime.
type Setting struct {
	ID    uint   `gorm:"primaryKey"`
	Key   string `gorm:"uniqueIndex;type:text;not null"`
	Value string `gorm:"type:text"`

	UpdatedAt time.Time
}
