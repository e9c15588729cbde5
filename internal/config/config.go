// Package config loads stocky's configuration with viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/zappabad/stocky/internal/news/source"
	"github.com/zappabad/stocky/internal/store"
)

// Config represents the complete stocky configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Backend BackendConfig `mapstructure:"backend"`
	News    NewsConfig    `mapstructure:"news"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Server  ServerConfig  `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
	RedisURL   string `mapstructure:"redis_url"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewsConfig selects where the session's news backlog comes from.
type NewsConfig struct {
	Source          string        `mapstructure:"source"`
	File            string        `mapstructure:"file"`
	Feeds           []source.Feed `mapstructure:"feeds"`
	PreferredTopics []string      `mapstructure:"preferred_topics"`
	// RefetchExhausted fetches a fresh backlog when a user's pool ran dry.
	RefetchExhausted bool `mapstructure:"refetch_exhausted"`
}

type NotifyConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// News source kinds.
const (
	SourceBackend = "backend"
	SourceFile    = "file"
	SourceRSS     = "rss"
)

// DefaultSQLitePath is where the SQLite store lives unless configured.
func DefaultSQLitePath() string {
	return filepath.Join(xdg.DataHome, "stocky", "stocky.db")
}

// Load reads configuration from cfgFile (or the default search paths) and
// STOCKY_ environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("stocky")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "stocky"))
	}

	v.SetEnvPrefix("STOCKY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("store.backend", store.BackendSQLite)
	v.SetDefault("store.sqlite_path", DefaultSQLitePath())
	v.SetDefault("store.redis_url", "")

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout", 10*time.Second)

	v.SetDefault("news.source", SourceBackend)
	v.SetDefault("news.file", "")
	v.SetDefault("news.preferred_topics", []string{})
	v.SetDefault("news.refetch_exhausted", false)

	v.SetDefault("notify.enabled", true)
	v.SetDefault("notify.poll_interval", 3*time.Second)

	v.SetDefault("server.addr", ":8080")
}

func validate(cfg *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	switch cfg.Store.Backend {
	case store.BackendMemory:
	case store.BackendSQLite:
		if cfg.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite backend")
		}
	case store.BackendRedis:
		if cfg.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be memory, sqlite, or redis)", cfg.Store.Backend)
	}

	switch cfg.News.Source {
	case SourceBackend:
	case SourceFile:
		if cfg.News.File == "" {
			return fmt.Errorf("news.file is required for the file source")
		}
	case SourceRSS:
		if len(cfg.News.Feeds) == 0 {
			return fmt.Errorf("news.feeds is required for the rss source")
		}
		for i, f := range cfg.News.Feeds {
			if f.Name == "" || f.URL == "" {
				return fmt.Errorf("news.feeds[%d] needs both name and url", i)
			}
		}
	default:
		return fmt.Errorf("invalid news source: %s (must be backend, file, or rss)", cfg.News.Source)
	}

	if cfg.Notify.PollInterval <= 0 {
		return fmt.Errorf("notify.poll_interval must be positive")
	}
	return nil
}
