package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zappabad/stocky/internal/events"
	"github.com/zappabad/stocky/internal/metrics"
	"github.com/zappabad/stocky/internal/notify"
	notifyview "github.com/zappabad/stocky/internal/notify/view"
	"github.com/zappabad/stocky/internal/session"
	"github.com/zappabad/stocky/internal/store"
)

// OrderSource lists a user's orders.
type OrderSource interface {
	FetchAllOrders(ctx context.Context, userID string) ([]notify.Order, error)
}

// DateSource provides the current in-game date label.
type DateSource interface {
	VirtualDate() string
}

// Watcher polls the user's orders and raises a notification for every fill
// it has not reported before. The first successful poll of a session only
// records what is already filled.
type Watcher struct {
	cfg    Config
	user   session.UserID
	repo   *session.Repository
	orders OrderSource
	dates  DateSource
	pub    events.Publisher
	log    *slog.Logger
	view   *notifyview.NotificationView

	mu        sync.Mutex
	notified  map[int64]bool
	firstLoad bool

	closed    chan struct{}
	closeOnce sync.Once
	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewWatcher creates a Watcher. pub and log may be nil.
func NewWatcher(cfg Config, user session.UserID, repo *session.Repository, orders OrderSource, dates DateSource, pub events.Publisher, log *slog.Logger) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if pub == nil {
		pub = events.Discard
	}
	if log == nil {
		log = slog.Default()
	}

	return &Watcher{
		cfg:       cfg,
		user:      user,
		repo:      repo,
		orders:    orders,
		dates:     dates,
		pub:       pub,
		log:       log.With("user_id", string(user)),
		view:      notifyview.NewNotificationView(cfg.Capacity),
		notified:  make(map[int64]bool),
		firstLoad: true,
		closed:    make(chan struct{}),
	}
}

// Start restores the notified set and begins polling.
func (w *Watcher) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		ids, err := w.repo.LoadNotified(ctx, w.user)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			w.log.Warn("discarding persisted notified ids", "error", err)
		}
		w.mu.Lock()
		for _, id := range ids {
			w.notified[id] = true
		}
		w.mu.Unlock()

		w.wg.Add(1)
		go w.run()
	})
}

func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.poll()
	for {
		select {
		case <-w.closed:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.PollInterval)
	defer cancel()

	if err := w.Poll(ctx); err != nil {
		metrics.OrderPollErrors.Inc()
		w.log.Warn("order poll failed", "error", err)
	}
}

// Poll fetches the order list once and notifies new fills.
func (w *Watcher) Poll(ctx context.Context) error {
	orders, err := w.orders.FetchAllOrders(ctx, string(w.user))
	if err != nil {
		return fmt.Errorf("fetching orders: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.closed:
		return nil
	default:
	}

	changed := false
	for _, o := range orders {
		if !o.Filled() || w.notified[o.ID] {
			continue
		}
		if !w.firstLoad {
			w.raise(o)
		} else {
			w.log.Debug("fill already settled before session start", "order_id", o.ID)
		}
		w.notified[o.ID] = true
		changed = true
	}
	w.firstLoad = false

	if changed {
		if err := w.repo.SaveNotified(ctx, w.user, w.notifiedIDs()); err != nil {
			metrics.PersistErrors.WithLabelValues("notified_ids").Inc()
			w.log.Warn("persist failed", "family", "notified_ids", "error", err)
		}
	}
	return nil
}

func (w *Watcher) raise(o notify.Order) {
	kind := notify.KindSell
	if o.IsBuy() {
		kind = notify.KindBuy
	}
	date := ""
	if w.dates != nil {
		date = w.dates.VirtualDate()
	}

	n := notify.Notification{
		ID:      uuid.NewString(),
		OrderID: o.ID,
		Message: fmt.Sprintf("%s %d주 %s 체결 완료!", o.CompanyName, o.Quantity, o.SideText()),
		Time:    date,
		Type:    kind,
	}
	w.view.Add(n)

	metrics.FillNotifications.Inc()
	w.log.Info("order filled", "order_id", o.ID, "message", n.Message)
	w.pub.Publish(events.New(events.TypeOrderFilled, string(w.user), date, n))
}

func (w *Watcher) notifiedIDs() []int64 {
	ids := make([]int64, 0, len(w.notified))
	for id := range w.notified {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Notifications returns the kept notifications, newest first.
func (w *Watcher) Notifications() []notify.Notification {
	return w.view.List()
}

// Unread returns the number of unread notifications.
func (w *Watcher) Unread() int {
	return w.view.Unread()
}

// MarkAllRead flags every notification as read.
func (w *Watcher) MarkAllRead() {
	w.view.MarkAllRead()
}

// Close stops polling. Safe to call repeatedly.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.closed)
		w.startOnce.Do(func() {})
	})
	w.wg.Wait()
}
