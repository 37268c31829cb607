package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Telegram: TelegramServerConfig{
			UpdateTimeout: 30,
		},

		Database: DatabaseServerConfig{
			Path: "goshare.db",
		},

		Delivery: DeliveryServerConfig{
			ProtectContent:    true,
			AutoDeleteSeconds: 0,
			SweepInterval:     "1m",
			GateCacheTTL:      "5m",
			SessionTimeout:    "30m",
		},

		Web: WebServerConfig{
			Enabled: true,
			Listen:  ":8080",
		},

		Messages: MessagesServerConfig{
			Start:             "Hello {mention}!\n\nSend me a share link to receive a file.",
			ForceSub:          "Hi {mention}! To access this file you must join all of our channels.\n\nPlease join the channels below, then press \"Try Again\".",
			CustomCaption:     "",
			AutoDelete:        "This file will be automatically deleted in {time}.",
			AutoDeleteSuccess: "The file has been automatically deleted due to time expiry.",
			UserReply:         "Please send me a valid file link to access the content.",
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.owner_id", 0)
	viper.SetDefault("telegram.admins", []int64{})
	viper.SetDefault("telegram.archive_channel_id", 0)
	viper.SetDefault("telegram.force_sub_channel_ids", []int64{})
	viper.SetDefault("telegram.update_timeout", defaults.Telegram.UpdateTimeout)

	viper.SetDefault("database.path", defaults.Database.Path)

	viper.SetDefault("delivery.protect_content", defaults.Delivery.ProtectContent)
	viper.SetDefault("delivery.auto_delete_seconds", defaults.Delivery.AutoDeleteSeconds)
	viper.SetDefault("delivery.sweep_interval", defaults.Delivery.SweepInterval)
	viper.SetDefault("delivery.gate_cache_ttl", defaults.Delivery.GateCacheTTL)
	viper.SetDefault("delivery.session_timeout", defaults.Delivery.SessionTimeout)

	viper.SetDefault("web.enabled", defaults.Web.Enabled)
	viper.SetDefault("web.listen", defaults.Web.Listen)

	viper.SetDefault("messages.start", defaults.Messages.Start)
	viper.SetDefault("messages.force_sub", defaults.Messages.ForceSub)
	viper.SetDefault("messages.custom_caption", defaults.Messages.CustomCaption)
	viper.SetDefault("messages.auto_delete", defaults.Messages.AutoDelete)
	viper.SetDefault("messages.auto_delete_success", defaults.Messages.AutoDeleteSuccess)
	viper.SetDefault("messages.user_reply", defaults.Messages.UserReply)
}
