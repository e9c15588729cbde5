package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zappabad/stocky/internal/backend"
	"github.com/zappabad/stocky/internal/config"
	"github.com/zappabad/stocky/internal/game"
	"github.com/zappabad/stocky/internal/news"
	"github.com/zappabad/stocky/internal/news/source"
	notifyservice "github.com/zappabad/stocky/internal/notify/service"
	"github.com/zappabad/stocky/internal/server"
	"github.com/zappabad/stocky/internal/session"
	"github.com/zappabad/stocky/internal/store"
)

// app is everything a running command needs, built from config.
type app struct {
	store   store.Store
	repo    *session.Repository
	game    *game.Game
	details server.DetailSource
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	repo := session.NewRepository(st)

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	src, details, err := newsSource(cfg, client)
	if err != nil {
		st.Close()
		return nil, err
	}

	var orders notifyservice.OrderSource
	if cfg.Notify.Enabled {
		orders = client
	}

	g := game.NewGame(gameConfig(cfg), repo, src, orders, nil, log)
	return &app{store: st, repo: repo, game: g, details: details}, nil
}

func (a *app) Close() {
	a.game.Close()
	a.store.Close()
}

func openStore(cfg *config.Config) (store.Store, error) {
	st, err := store.Open(store.Options{
		Backend:    cfg.Store.Backend,
		SQLitePath: cfg.Store.SQLitePath,
		RedisURL:   cfg.Store.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	return st, nil
}

// newsSource returns the configured source and, for the backend, the detail
// lookup that goes with it.
func newsSource(cfg *config.Config, client *backend.Client) (news.Source, server.DetailSource, error) {
	switch cfg.News.Source {
	case config.SourceBackend:
		return client, client, nil
	case config.SourceFile:
		return source.NewFile(cfg.News.File), nil, nil
	case config.SourceRSS:
		return source.NewRSS(cfg.News.Feeds), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown news source %q", cfg.News.Source)
	}
}

func gameConfig(cfg *config.Config) game.Config {
	gc := game.DefaultConfig()
	if len(cfg.News.PreferredTopics) > 0 {
		gc.Scheduler.PreferredTopics = cfg.News.PreferredTopics
	}
	gc.Scheduler.RefetchExhausted = cfg.News.RefetchExhausted
	gc.Notify.PollInterval = cfg.Notify.PollInterval
	gc.EnableNotify = cfg.Notify.Enabled
	return gc
}

func resetUser(ctx context.Context, repo *session.Repository, user string) error {
	if err := repo.Reset(ctx, session.UserID(user)); err != nil {
		return fmt.Errorf("resetting user %s: %w", user, err)
	}
	return nil
}
