package game

import (
	notifyservice "github.com/zappabad/stocky/internal/notify/service"
	sessionservice "github.com/zappabad/stocky/internal/session/service"
)

// Config holds configuration for the game.
type Config struct {
	// Scheduler is the configuration for each user's clock and feed.
	Scheduler sessionservice.Config
	// Notify is the configuration for the fill watcher.
	Notify notifyservice.Config
	// EnableNotify determines whether fills are watched.
	EnableNotify bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Scheduler:    sessionservice.DefaultConfig(),
		Notify:       notifyservice.DefaultConfig(),
		EnableNotify: true,
	}
}
