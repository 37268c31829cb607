package server

import "time"

type DeliveryServerConfig struct {
	// ProtectContent forwards files with the platform's save/forward
	// protection flag set.
	ProtectContent bool `mapstructure:"protect_content" yaml:"protect_content"`

	// AutoDeleteSeconds removes delivered files after this many seconds.
	// Zero disables auto-delete.
	AutoDeleteSeconds int `mapstructure:"auto_delete_seconds" yaml:"auto_delete_seconds"`

	// SweepInterval is the period of the delete-queue recovery sweep.
	SweepInterval string `mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// GateCacheTTL bounds the informational subscription-report cache.
	GateCacheTTL string `mapstructure:"gate_cache_ttl" yaml:"gate_cache_ttl"`

	// SessionTimeout bounds interactive batch-collection sessions.
	SessionTimeout string `mapstructure:"session_timeout" yaml:"session_timeout"`
}

// AutoDeleteDuration returns the configured expiry as a duration; zero or
// negative means disabled.
func (c DeliveryServerConfig) AutoDeleteDuration() time.Duration {
	if c.AutoDeleteSeconds <= 0 {
		return 0
	}
	return time.Duration(c.AutoDeleteSeconds) * time.Second
}

// SweepIntervalDuration parses SweepInterval, falling back to one minute.
func (c DeliveryServerConfig) SweepIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// GateCacheTTLDuration parses GateCacheTTL, falling back to five minutes.
func (c DeliveryServerConfig) GateCacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.GateCacheTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// SessionTimeoutDuration parses SessionTimeout, falling back to thirty
// minutes.
func (c DeliveryServerConfig) SessionTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}
