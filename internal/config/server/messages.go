package server

// MessagesServerConfig holds the user-facing message templates. Templates
// support {first}, {last}, {id}, {mention} and {username} placeholders;
// the caption template additionally supports {filename} and
// {previouscaption}.
type MessagesServerConfig struct {
	Start             string `mapstructure:"start"               yaml:"start"`
	ForceSub          string `mapstructure:"force_sub"           yaml:"force_sub"`
	CustomCaption     string `mapstructure:"custom_caption"      yaml:"custom_caption"`
	AutoDelete        string `mapstructure:"auto_delete"         yaml:"auto_delete"`
	AutoDeleteSuccess string `mapstructure:"auto_delete_success" yaml:"auto_delete_success"`
	UserReply         string `mapstructure:"user_reply"          yaml:"user_reply"`
}
