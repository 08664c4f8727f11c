// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// The IRC connection works without credentials (anonymous read-only mode).
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// Twitch chat identity. Both empty => anonymous connection.
	TwitchBotUsername string
	TwitchOAuthToken  string

	// Reconciler
	ReconcileInterval time.Duration

	// HTTP
	HTTPAddr string

	// Analytics
	ActivityWindow time.Duration
}

// Load reads environment variables and applies defaults. Missing Twitch
// credentials are not an error; ingestion falls back to an anonymous
// connection.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.TwitchBotUsername = os.Getenv("TWITCH_BOT_USERNAME")
	cfg.TwitchOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")

	cfg.ReconcileInterval = 30 * time.Second
	if v := os.Getenv("RECONCILE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid RECONCILE_INTERVAL %q", v)
		}
		cfg.ReconcileInterval = d
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	// Trailing window for the channel-activity histogram.
	cfg.ActivityWindow = 24 * time.Hour
	if v := os.Getenv("ACTIVITY_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid ACTIVITY_WINDOW %q", v)
		}
		cfg.ActivityWindow = d
	}

	return cfg, nil
}
