package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/zappabad/stocky/internal/clock"
	"github.com/zappabad/stocky/internal/events"
	"github.com/zappabad/stocky/internal/metrics"
	"github.com/zappabad/stocky/internal/news"
	"github.com/zappabad/stocky/internal/news/pool"
	newsview "github.com/zappabad/stocky/internal/news/view"
	"github.com/zappabad/stocky/internal/session"
	"github.com/zappabad/stocky/internal/store"
)

// ClockPayload is attached to CLOCK_TICK events.
type ClockPayload struct {
	TotalPlayedMs int64 `json:"total_played_ms"`
}

// FeedPayload is attached to FEED_LOADED events.
type FeedPayload struct {
	Active   []news.Record `json:"active"`
	PoolSize int           `json:"pool_size"`
}

// Snapshot is a point-in-time copy of a session's clock and feed.
type Snapshot struct {
	UserID        session.UserID `json:"user_id"`
	TotalPlayedMs int64          `json:"total_played_ms"`
	VirtualDate   string         `json:"virtual_date"`
	Active        []news.Record  `json:"active"`
	PoolSize      int            `json:"pool_size"`
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithRand sets the random source used to build the pool.
func WithRand(rng pool.Rand) Option {
	return func(s *Scheduler) { s.rng = rng }
}

// WithPublisher sets where session events go.
func WithPublisher(p events.Publisher) Option {
	return func(s *Scheduler) { s.pub = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// Scheduler runs one user's virtual clock and drip-feeds news from the
// backlog into the active feed.
type Scheduler struct {
	cfg    Config
	user   session.UserID
	repo   *session.Repository
	source news.Source
	rng    pool.Rand
	pub    events.Publisher
	log    *slog.Logger
	feed   *newsview.FeedView

	mu            sync.Mutex
	playedMs      int64
	lastReleaseMs int64
	started       bool
	virtualDate   string
	active        []news.Record
	pool          []news.Record

	ctx       context.Context
	cancel    context.CancelFunc
	feedReady chan struct{}
	startOnce sync.Once
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewScheduler creates a Scheduler for user. Nothing runs until Start.
func NewScheduler(cfg Config, user session.UserID, repo *session.Repository, source news.Source, opts ...Option) *Scheduler {
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cfg:       cfg,
		user:      user,
		repo:      repo,
		source:    source,
		feed:      newsview.NewFeedView(cfg.FeedCapacity),
		ctx:       ctx,
		cancel:    cancel,
		feedReady: make(chan struct{}),
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.pub == nil {
		s.pub = events.Discard
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("user_id", string(user))

	return s
}

// Start restores persisted state, kicks off the one-shot feed build when no
// usable feed was persisted, and starts the tick loop. Calling Start again
// does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		needsBuild := s.restore(ctx)

		if needsBuild && s.source != nil {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer close(s.feedReady)
				if err := s.initFeed(s.ctx); err != nil {
					s.log.Warn("news feed unavailable", "error", err)
				}
			}()
		} else {
			close(s.feedReady)
		}

		s.wg.Add(1)
		go s.run()
	})
}

func (s *Scheduler) restore(ctx context.Context) (needsBuild bool) {
	played, err := s.repo.LoadPlayedMs(ctx, s.user)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Warn("discarding persisted play time", "error", err)
	}

	active, errActive := s.repo.LoadActive(ctx, s.user)
	pl, errPool := s.repo.LoadPool(ctx, s.user)
	for _, err := range []error{errActive, errPool} {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("discarding persisted feed", "error", err)
		}
	}
	usable := errActive == nil && errPool == nil && len(active)+len(pl) > 0
	exhausted := usable && len(pl) == 0 && s.cfg.RefetchExhausted

	s.mu.Lock()
	defer s.mu.Unlock()

	s.playedMs = played
	s.lastReleaseMs = played
	s.started = true
	s.virtualDate = clock.Label(played)
	if usable {
		s.active = active
		s.pool = pl
		s.feed.Reset(active)
		metrics.PoolSize.Set(float64(len(pl)))
	}

	s.log.Info("session restored",
		"total_played_ms", played,
		"virtual_date", s.virtualDate,
		"active", len(s.active),
		"pool", len(s.pool),
	)
	if exhausted {
		s.log.Info("news pool exhausted, refetching")
	}
	return !usable || exhausted
}

// initFeed fetches the backlog, builds the pool and promotes the initial
// feed. It is a no-op when the feed already has records, unless the pool is
// empty and RefetchExhausted is set, in which case the rebuilt feed replaces
// the active one.
func (s *Scheduler) initFeed(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	records, err := s.source.FetchNewsList(ctx)
	if err != nil {
		metrics.FeedBuilds.WithLabelValues("error").Inc()
		return fmt.Errorf("fetching news: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.closed:
		return nil
	default:
	}
	if len(s.pool) > 0 || (len(s.active) > 0 && !s.cfg.RefetchExhausted) {
		return nil
	}

	built := pool.Build(records, s.rng, s.cfg.BucketCap)
	active, rest := pool.SelectInitial(built, s.cfg.PreferredTopics, s.cfg.InitialActive, clock.StartDisplayDate())
	s.active = active
	s.pool = rest
	s.feed.Reset(active)
	s.persistFeed(ctx)

	metrics.FeedBuilds.WithLabelValues("ok").Inc()
	metrics.PoolSize.Set(float64(len(rest)))
	s.log.Info("news feed built", "fetched", len(records), "active", len(active), "pool", len(rest))
	s.pub.Publish(events.New(events.TypeFeedLoaded, string(s.user), s.virtualDate, FeedPayload{
		Active:   cloneRecords(active),
		PoolSize: len(rest),
	}))
	return nil
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TickInterval)
	defer cancel()

	s.advance(ctx)
}

// advance moves the clock forward by one tick, persists it, and releases the
// next pool record when the release interval has passed. Nothing happens
// before the persisted state is restored or after Close.
func (s *Scheduler) advance(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	select {
	case <-s.closed:
		return
	default:
	}

	s.playedMs += clock.TickMs
	if err := s.repo.SavePlayedMs(ctx, s.user, s.playedMs); err != nil {
		s.persistFailed("played_ms", err)
	}
	s.virtualDate = clock.Label(s.playedMs)

	metrics.ClockTicks.Inc()
	s.pub.Publish(events.New(events.TypeClockTick, string(s.user), s.virtualDate, ClockPayload{TotalPlayedMs: s.playedMs}))

	if s.playedMs-s.lastReleaseMs >= s.cfg.ReleaseIntervalMs {
		s.lastReleaseMs = s.playedMs
		s.release(ctx)
	}
}

func (s *Scheduler) release(ctx context.Context) {
	if len(s.pool) == 0 {
		return
	}

	next := s.pool[0]
	next.DisplayDate = clock.DisplayDate(s.virtualDate)

	s.pool = s.pool[1:]
	s.active = append([]news.Record{next}, s.active...)
	s.feed.Apply(newsview.NewsEvent{Item: next})
	s.persistFeed(ctx)

	metrics.NewsReleased.Inc()
	metrics.PoolSize.Set(float64(len(s.pool)))
	s.log.Debug("news released", "id", next.ID, "topic", next.Topic(), "pool", len(s.pool))
	s.pub.Publish(events.New(events.TypeNewsReleased, string(s.user), s.virtualDate, next))
}

func (s *Scheduler) persistFeed(ctx context.Context) {
	if err := s.repo.SaveActive(ctx, s.user, s.active); err != nil {
		s.persistFailed("active_news", err)
	}
	if err := s.repo.SavePool(ctx, s.user, s.pool); err != nil {
		s.persistFailed("news_pool", err)
	}
}

func (s *Scheduler) persistFailed(family string, err error) {
	metrics.PersistErrors.WithLabelValues(family).Inc()
	s.log.Warn("persist failed", "family", family, "error", err)
}

// User returns the user this scheduler belongs to.
func (s *Scheduler) User() session.UserID {
	return s.user
}

// VirtualDate returns the current in-game date label.
func (s *Scheduler) VirtualDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.virtualDate
}

// Snapshot returns a copy of the current state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		UserID:        s.user,
		TotalPlayedMs: s.playedMs,
		VirtualDate:   s.virtualDate,
		Active:        cloneRecords(s.active),
		PoolSize:      len(s.pool),
	}
}

// Feed returns up to n active records for display: newest first, repeated
// titles hidden.
func (s *Scheduler) Feed(n int) []news.Record {
	return s.feed.Latest(n)
}

// FeedReady is closed once the feed has been restored or the one-shot build
// has finished, successfully or not.
func (s *Scheduler) FeedReady() <-chan struct{} {
	return s.feedReady
}

// Close stops the tick loop and any pending fetch. Safe to call repeatedly.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.cancel()
		// never started
		s.startOnce.Do(func() { close(s.feedReady) })
	})
	s.wg.Wait()
}

func cloneRecords(rs []news.Record) []news.Record {
	out := make([]news.Record, len(rs))
	copy(out, rs)
	return out
}
