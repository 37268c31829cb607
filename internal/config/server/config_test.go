package server

import (
	"testing"
	"time"
)

func TestIsAdmin(t *testing.T) {
	cfg := TelegramServerConfig{
		OwnerID: 1,
		Admins:  []int64{2, 3},
	}

	cases := []struct {
		userID int64
		want   bool
	}{
		{1, true},
		{2, true},
		{3, true},
		{4, false},
		{0, false},
	}

	for _, tc := range cases {
		if got := cfg.IsAdmin(tc.userID); got != tc.want {
			t.Errorf("IsAdmin(%d) = %v, want %v", tc.userID, got, tc.want)
		}
	}
}

func TestIsForceSubEnabled(t *testing.T) {
	if (TelegramServerConfig{}).IsForceSubEnabled() {
		t.Error("gate enabled with no channels configured")
	}
	cfg := TelegramServerConfig{ForceSubChannelIDs: []int64{-1001}}
	if !cfg.IsForceSubEnabled() {
		t.Error("gate disabled with channels configured")
	}
}

func TestDeliveryDurations(t *testing.T) {
	cfg := DeliveryServerConfig{
		AutoDeleteSeconds: 120,
		SweepInterval:     "30s",
		GateCacheTTL:      "2m",
		SessionTimeout:    "1h",
	}

	if got := cfg.AutoDeleteDuration(); got != 2*time.Minute {
		t.Errorf("AutoDeleteDuration = %v, want 2m", got)
	}
	if got := cfg.SweepIntervalDuration(); got != 30*time.Second {
		t.Errorf("SweepIntervalDuration = %v, want 30s", got)
	}
	if got := cfg.GateCacheTTLDuration(); got != 2*time.Minute {
		t.Errorf("GateCacheTTLDuration = %v, want 2m", got)
	}
	if got := cfg.SessionTimeoutDuration(); got != time.Hour {
		t.Errorf("SessionTimeoutDuration = %v, want 1h", got)
	}
}

func TestDeliveryDurationFallbacks(t *testing.T) {
	cfg := DeliveryServerConfig{SweepInterval: "garbage"}

	if got := cfg.AutoDeleteDuration(); got != 0 {
		t.Errorf("AutoDeleteDuration = %v, want 0 (disabled)", got)
	}
	if got := cfg.SweepIntervalDuration(); got != time.Minute {
		t.Errorf("SweepIntervalDuration fallback = %v, want 1m", got)
	}
	if got := cfg.GateCacheTTLDuration(); got != 5*time.Minute {
		t.Errorf("GateCacheTTLDuration fallback = %v, want 5m", got)
	}
	if got := cfg.SessionTimeoutDuration(); got != 30*time.Minute {
		t.Errorf("SessionTimeoutDuration fallback = %v, want 30m", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := GetServerDefault()
	if err := cfg.Validate(); err == nil {
		t.Error("default config validated without bot token")
	}

	cfg.Telegram.BotToken = "123:abc"
	if err := cfg.Validate(); err == nil {
		t.Error("config validated without archive channel")
	}

	cfg.Telegram.ArchiveChannelID = -1001234
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
