package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/zappabad/stocky/internal/events"
	"github.com/zappabad/stocky/internal/metrics"
	"github.com/zappabad/stocky/internal/news"
	notifyservice "github.com/zappabad/stocky/internal/notify/service"
	"github.com/zappabad/stocky/internal/session"
	sessionservice "github.com/zappabad/stocky/internal/session/service"
)

// ErrNoSession is returned when an operation needs a logged-in user.
var ErrNoSession = errors.New("game: no live session")

// ErrClosed is returned by Login after Close.
var ErrClosed = errors.New("game: closed")

// Session is one logged-in user's running subsystems. A Session is not
// modified once Login has returned it; a nickname change swaps in a copy.
type Session struct {
	UserID    session.UserID
	Nickname  string
	Scheduler *sessionservice.Scheduler
	// Watcher is nil when fill notifications are disabled.
	Watcher *notifyservice.Watcher
}

// Game owns the single live session and manages its lifecycle.
type Game struct {
	cfg    Config
	repo   *session.Repository
	source news.Source
	orders notifyservice.OrderSource
	bus    *events.Bus
	log    *slog.Logger

	// schedOpts are passed to every new scheduler.
	schedOpts []sessionservice.Option

	mu      sync.Mutex
	current *Session
	closed  bool
}

// NewGame creates a Game. orders may be nil to disable fill notifications.
func NewGame(cfg Config, repo *session.Repository, source news.Source, orders notifyservice.OrderSource, bus *events.Bus, log *slog.Logger, opts ...sessionservice.Option) *Game {
	if log == nil {
		log = slog.Default()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	return &Game{
		cfg:       cfg,
		repo:      repo,
		source:    source,
		orders:    orders,
		bus:       bus,
		log:       log,
		schedOpts: opts,
	}
}

// Bus returns the event bus sessions publish to.
func (g *Game) Bus() *events.Bus {
	return g.bus
}

// Repository returns the session repository.
func (g *Game) Repository() *session.Repository {
	return g.repo
}

// FeedCapacity is the most records a session's display feed holds.
func (g *Game) FeedCapacity() int {
	if g.cfg.Scheduler.FeedCapacity > 0 {
		return g.cfg.Scheduler.FeedCapacity
	}
	return sessionservice.DefaultConfig().FeedCapacity
}

// Login starts a session for user. Logging in as the current user returns
// the live session untouched; logging in as someone else stops the previous
// session before the new one starts.
func (g *Game) Login(ctx context.Context, user session.UserID, nickname string) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrClosed
	}
	if g.current != nil && g.current.UserID == user {
		if nickname != "" && nickname != g.current.Nickname {
			next := *g.current
			next.Nickname = nickname
			g.current = &next
		}
		return g.current, nil
	}
	g.stopLocked()

	opts := append([]sessionservice.Option{
		sessionservice.WithPublisher(g.bus),
		sessionservice.WithLogger(g.log),
	}, g.schedOpts...)
	sched := sessionservice.NewScheduler(g.cfg.Scheduler, user, g.repo, g.source, opts...)

	s := &Session{UserID: user, Nickname: nickname, Scheduler: sched}
	if g.cfg.EnableNotify && g.orders != nil {
		s.Watcher = notifyservice.NewWatcher(g.cfg.Notify, user, g.repo, g.orders, sched, g.bus, g.log)
	}

	sched.Start(ctx)
	if s.Watcher != nil {
		s.Watcher.Start(ctx)
	}
	g.current = s

	metrics.LiveSessions.Set(1)
	g.log.Info("session started", "user_id", string(user), "nickname", nickname)
	g.bus.Publish(events.New(events.TypeSessionStarted, string(user), sched.VirtualDate(), map[string]string{"nickname": nickname}))
	return s, nil
}

// Logout stops the live session, if any.
func (g *Game) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

// Current returns the live session.
func (g *Game) Current() (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil {
		return nil, ErrNoSession
	}
	return g.current, nil
}

func (g *Game) stopLocked() {
	s := g.current
	if s == nil {
		return
	}
	g.current = nil

	// watcher reads the scheduler's date, stop it first
	if s.Watcher != nil {
		s.Watcher.Close()
	}
	date := s.Scheduler.VirtualDate()
	s.Scheduler.Close()

	metrics.LiveSessions.Set(0)
	g.log.Info("session ended", "user_id", string(s.UserID), "virtual_date", date)
	g.bus.Publish(events.New(events.TypeSessionEnded, string(s.UserID), date, nil))
}

// Close stops the live session and the event bus.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.closed = true
	g.stopLocked()
	g.bus.Close()
}
