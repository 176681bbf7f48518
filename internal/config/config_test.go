package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		BotToken:            "test-token",
		SpotifyClientID:     "client-id",
		SpotifyClientSecret: "client-secret",
		MaxQueueSize:        100,
		MaxHistorySize:      50,
		DefaultVolume:       100,
		AutoplayDelay:       time.Second,
		IdleLeaveDelay:      10 * time.Second,
		VoteExpiry:          time.Minute,
		VoteThreshold:       0.5,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing bot token",
			mutate:  func(c *Config) { c.BotToken = "" },
			wantErr: true,
		},
		{
			name:    "missing spotify client id",
			mutate:  func(c *Config) { c.SpotifyClientID = "" },
			wantErr: true,
		},
		{
			name:    "zero queue size",
			mutate:  func(c *Config) { c.MaxQueueSize = 0 },
			wantErr: true,
		},
		{
			name:    "default volume out of range",
			mutate:  func(c *Config) { c.DefaultVolume = 250 },
			wantErr: true,
		},
		{
			name:    "vote threshold above one",
			mutate:  func(c *Config) { c.VoteThreshold = 1.5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test-token")
	t.Setenv("SPOTIFY_CLIENT_ID", "client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "client-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MaxQueueSize != 100 {
		t.Errorf("MaxQueueSize = %d, want 100", cfg.MaxQueueSize)
	}
	if cfg.MaxHistorySize != 50 {
		t.Errorf("MaxHistorySize = %d, want 50", cfg.MaxHistorySize)
	}
	if cfg.DefaultVolume != 100 {
		t.Errorf("DefaultVolume = %d, want 100", cfg.DefaultVolume)
	}
	if cfg.AutoplayDelay != time.Second {
		t.Errorf("AutoplayDelay = %v, want 1s", cfg.AutoplayDelay)
	}
	if cfg.IdleLeaveDelay != 10*time.Second {
		t.Errorf("IdleLeaveDelay = %v, want 10s", cfg.IdleLeaveDelay)
	}
}
