package models

import (
	"strings"
	"time"
)

// BatchLink groups an ordered list of file tokens behind a single share token.
// Batches are deactivated, never hard-deleted; member tokens may stop
// resolving and are skipped at delivery time.
type BatchLink struct {
	ID    uint   `gorm:"primaryKey"`
	Token string `gorm:"uniqueIndex;type:text;not null"`

	// FileTokens holds the member file tokens joined by newlines,
	// preserving delivery order.
	FileTokens string `gorm:"type:text;not null"`

	Title       string `gorm:"type:text"`
	Description string `gorm:"type:text"`

	CreatedBy int64 `gorm:"not null"`
	CreatedAt time.Time

	AccessCount int64 `gorm:"default:0"`
	Active      bool  `gorm:"default:true"`

	UpdatedAt time.Time
}

// Tokens returns the member file tokens in stored order.
func (b *BatchLink) Tokens() []string {
	if b.FileTokens == "" {
		return nil
	}
	return strings.Split(b.FileTokens, "\n")
}

// SetTokens stores the member file tokens, preserving order.
func (b *BatchLink) SetTokens(tokens []string) {
	b.FileTokens = strings.Join(tokens, "\n")
}
