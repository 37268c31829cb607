// Package gateway is the port to the Telegram Bot API. The rest of the
// application talks to the Gateway interface; the concrete adapter wraps
// go-telegram-bot-api and handles flood-wait backoff.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MemberStatus is the membership state of a user in a chat as reported by
// Telegram.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// Gone reports whether the status means the user is not currently in the
// chat. Pending and restricted states still count as present.
func (s MemberStatus) Gone() bool {
	return s == StatusLeft || s == StatusKicked
}

// ChatInfo is the subset of chat metadata the bot needs.
type ChatInfo struct {
	ID       int64
	Title    string
	Username string
}

// SendRequest describes an outgoing text message.
type SendRequest struct {
	ChatID            int64
	Text              string
	ParseMode         string
	ReplyMarkup       any
	DisableWebPreview bool
}

// CopyRequest describes copying a stored message out of the archive channel.
type CopyRequest struct {
	ToChatID       int64
	FromChatID     int64
	MessageID      int
	Caption        string
	ParseMode      string
	ProtectContent bool
}

// Gateway defines the remote messaging operations the bot consumes.
// Every call retries exactly once after a flood-wait signal; a second signal
// on the retry propagates as *FloodWaitError.
type Gateway interface {
	// Username returns the bot's own username, used for deep links.
	Username() string

	GetChat(ctx context.Context, chatID int64) (*ChatInfo, error)
	GetChatMember(ctx context.Context, chatID, userID int64) (MemberStatus, error)
	ExportInviteLink(ctx context.Context, chatID int64) (string, error)

	SendMessage(ctx context.Context, req SendRequest) (int, error)
	CopyMessage(ctx context.Context, req CopyRequest) (int, error)
	ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// FloodWaitError is the rate-limit signal from the messaging platform,
// carrying the wait the platform dictated.
type FloodWaitError struct {
	RetryAfter time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait: retry after %s", e.RetryAfter)
}

// IsFloodWait extracts a flood-wait signal from an error chain.
func IsFloodWait(err error) (*FloodWaitError, bool) {
	var flood *FloodWaitError
	if errors.As(err, &flood) {
		return flood, true
	}
	return nil, false
}
