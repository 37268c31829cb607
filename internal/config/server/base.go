package server

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	Telegram TelegramServerConfig `mapstructure:"telegram" yaml:"telegram"`
	Database DatabaseServerConfig `mapstructure:"database" yaml:"database"`
	Delivery DeliveryServerConfig `mapstructure:"delivery" yaml:"delivery"`
	Web      WebServerConfig      `mapstructure:"web"      yaml:"web"`
	Messages MessagesServerConfig `mapstructure:"messages" yaml:"messages"`
}

type DatabaseServerConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type WebServerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen"  yaml:"listen"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings without which the bot cannot operate.
func (cfg *BaseServerConfig) Validate() error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if cfg.Telegram.ArchiveChannelID == 0 {
		return fmt.Errorf("telegram.archive_channel_id is required")
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}
