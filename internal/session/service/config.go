package service

import (
	"time"

	"github.com/zappabad/stocky/internal/clock"
	"github.com/zappabad/stocky/internal/news/pool"
	newsview "github.com/zappabad/stocky/internal/news/view"
)

// Config holds configuration for the session scheduler.
type Config struct {
	// TickInterval is the real time between clock ticks. Each tick always
	// adds clock.TickMs of play time.
	TickInterval time.Duration
	// ReleaseIntervalMs is the play time between two news releases.
	ReleaseIntervalMs int64
	// InitialActive is the size of a freshly built feed.
	InitialActive int
	// BucketCap is the per-topic cap applied while building the pool.
	BucketCap int
	// PreferredTopics are favoured when picking the initial feed.
	PreferredTopics []string
	// FetchTimeout bounds the one-shot news fetch.
	FetchTimeout time.Duration
	// FeedCapacity is how many records the display feed keeps.
	FeedCapacity int
	// RefetchExhausted rebuilds the feed at start when the persisted pool is
	// empty. Off by default: an exhausted feed stays as it is.
	RefetchExhausted bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:      time.Second,
		ReleaseIntervalMs: clock.ReleaseIntervalMs,
		InitialActive:     pool.InitialActiveSize,
		BucketCap:         pool.BucketCap,
		PreferredTopics:   pool.PreferredTopics,
		FetchTimeout:      10 * time.Second,
		FeedCapacity:      newsview.DefaultCapacity,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.ReleaseIntervalMs <= 0 {
		c.ReleaseIntervalMs = d.ReleaseIntervalMs
	}
	if c.InitialActive <= 0 {
		c.InitialActive = d.InitialActive
	}
	if c.BucketCap <= 0 {
		c.BucketCap = d.BucketCap
	}
	if c.PreferredTopics == nil {
		c.PreferredTopics = d.PreferredTopics
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.FeedCapacity <= 0 {
		c.FeedCapacity = d.FeedCapacity
	}
	return c
}
