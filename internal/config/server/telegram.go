package server

type TelegramServerConfig struct {
	// BotToken authenticates against the Bot API.
	BotToken string `mapstructure:"bot_token" yaml:"bot_token"`

	OwnerID int64   `mapstructure:"owner_id" yaml:"owner_id"`
	Admins  []int64 `mapstructure:"admins"   yaml:"admins"`

	// ArchiveChannelID is the private channel used as durable storage for
	// the original file messages.
	ArchiveChannelID int64 `mapstructure:"archive_channel_id" yaml:"archive_channel_id"`

	// ForceSubChannelIDs lists the channels a user must join before any
	// file is delivered. Empty disables the gate.
	ForceSubChannelIDs []int64 `mapstructure:"force_sub_channel_ids" yaml:"force_sub_channel_ids"`

	// UpdateTimeout is the long-poll timeout in seconds.
	UpdateTimeout int `mapstructure:"update_timeout" yaml:"update_timeout"`
}

// IsAdmin reports whether the user may run admin commands.
func (c TelegramServerConfig) IsAdmin(userID int64) bool {
	if userID == c.OwnerID {
		return true
	}
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

// IsForceSubEnabled reports whether the subscription gate is active.
func (c TelegramServerConfig) IsForceSubEnabled() bool {
	return len(c.ForceSubChannelIDs) > 0
}
