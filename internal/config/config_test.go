package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stocky.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, DefaultSQLitePath(), cfg.Store.SQLitePath)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SourceBackend, cfg.News.Source)
	assert.True(t, cfg.Notify.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Notify.PollInterval)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
store:
  backend: redis
  redis_url: redis://localhost:6379/0
news:
  source: rss
  preferred_topics: [진호랩, 삼송전자]
  feeds:
    - name: 알파
      url: https://a.example/rss
notify:
  poll_interval: 5s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, []string{"진호랩", "삼송전자"}, cfg.News.PreferredTopics)
	require.Len(t, cfg.News.Feeds, 1)
	assert.Equal(t, "알파", cfg.News.Feeds[0].Name)
	assert.Equal(t, 5*time.Second, cfg.Notify.PollInterval)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STOCKY_STORE_BACKEND", "memory")
	t.Setenv("STOCKY_SERVER_ADDR", ":9999")

	cfg, err := Load(writeConfig(t, "store:\n  backend: sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"bad backend", "store:\n  backend: etcd\n"},
		{"redis without url", "store:\n  backend: redis\n"},
		{"file without path", "news:\n  source: file\n"},
		{"rss without feeds", "news:\n  source: rss\n"},
		{"rss feed without url", "news:\n  source: rss\n  feeds:\n    - name: x\n"},
		{"bad source", "news:\n  source: kafka\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
