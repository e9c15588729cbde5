package service

import "time"

// Config holds configuration for the fill watcher.
type Config struct {
	// PollInterval is the time between two order list polls.
	PollInterval time.Duration
	// Capacity is the maximum number of notifications to keep.
	Capacity int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 3 * time.Second,
		Capacity:     100,
	}
}
