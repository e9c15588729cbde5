package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zappabad/stocky/internal/events"
	"github.com/zappabad/stocky/internal/notify"
	"github.com/zappabad/stocky/internal/session"
	"github.com/zappabad/stocky/internal/store"
)

type stubOrders struct {
	mu     sync.Mutex
	orders []notify.Order
	err    error
}

func (s *stubOrders) FetchAllOrders(ctx context.Context, userID string) ([]notify.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]notify.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *stubOrders) set(orders []notify.Order, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.err = err
}

type fixedDate string

func (d fixedDate) VirtualDate() string { return string(d) }

type countingPublisher struct {
	mu sync.Mutex
	n  int
}

func (p *countingPublisher) Publish(ev events.Event) {
	if ev.Type != events.TypeOrderFilled {
		return
	}
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
}

func newTestWatcher(repo *session.Repository, orders OrderSource, pub events.Publisher) *Watcher {
	cfg := DefaultConfig()
	cfg.PollInterval = time.Hour
	return NewWatcher(cfg, "7", repo, orders, fixedDate("02.27 (금)"), pub, nil)
}

func TestWatcherFirstPollOnlyRecords(t *testing.T) {
	ctx := context.Background()
	repo := session.NewRepository(store.NewMemory())
	orders := &stubOrders{orders: []notify.Order{
		{ID: 1, Status: "FILLED", Side: "BUY", CompanyName: "진호랩", Quantity: 3},
		{ID: 2, Status: "PENDING", Side: "SELL", CompanyName: "진호랩", Quantity: 1},
	}}
	pub := &countingPublisher{}
	w := newTestWatcher(repo, orders, pub)

	if err := w.Poll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Notifications()) != 0 {
		t.Fatalf("expected no notifications on first poll, got %d", len(w.Notifications()))
	}
	ids, err := repo.LoadNotified(ctx, "7")
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Errorf("expected persisted ids [1], got %v, %v", ids, err)
	}

	orders.set([]notify.Order{
		{ID: 1, Status: "FILLED", Side: "BUY", CompanyName: "진호랩", Quantity: 3},
		{ID: 2, Status: "FILLED", OrderType: "매도", CompanyName: "진호랩", Quantity: 1},
		{ID: 3, Status: "FILLED", Side: "매수", CompanyName: "삼송전자", Quantity: 10},
	}, nil)
	if err := w.Poll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := w.Notifications()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	// newest first
	if got[0].Message != "삼송전자 10주 매수 체결 완료!" || got[0].Type != notify.KindBuy {
		t.Errorf("unexpected notification: %+v", got[0])
	}
	if got[1].Message != "진호랩 1주 매도 체결 완료!" || got[1].Type != notify.KindSell {
		t.Errorf("unexpected notification: %+v", got[1])
	}
	if got[0].Time != "02.27 (금)" {
		t.Errorf("expected virtual date stamp, got %q", got[0].Time)
	}
	if w.Unread() != 2 {
		t.Errorf("expected 2 unread, got %d", w.Unread())
	}

	// same orders again: nothing new
	if err := w.Poll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Notifications()) != 2 {
		t.Errorf("expected fills to be notified once, got %d", len(w.Notifications()))
	}
	if pub.n != 2 {
		t.Errorf("expected 2 ORDER_FILLED events, got %d", pub.n)
	}

	w.MarkAllRead()
	if w.Unread() != 0 {
		t.Errorf("expected 0 unread, got %d", w.Unread())
	}
}

func TestWatcherFailedFirstPollKeepsFirstLoad(t *testing.T) {
	ctx := context.Background()
	repo := session.NewRepository(store.NewMemory())
	orders := &stubOrders{err: errors.New("backend down")}
	w := newTestWatcher(repo, orders, nil)

	if err := w.Poll(ctx); err == nil {
		t.Fatal("expected an error")
	}

	orders.set([]notify.Order{{ID: 5, Status: "FILLED", Side: "BUY", CompanyName: "A", Quantity: 1}}, nil)
	if err := w.Poll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Notifications()) != 0 {
		t.Errorf("expected the first successful poll to stay silent, got %d", len(w.Notifications()))
	}
}

func TestWatcherRestoresNotifiedIDs(t *testing.T) {
	ctx := context.Background()
	repo := session.NewRepository(store.NewMemory())
	repo.SaveNotified(ctx, "7", []int64{1})

	orders := &stubOrders{}
	w := newTestWatcher(repo, orders, nil)
	w.Start(ctx)
	defer w.Close()

	// settles the first load whichever poll gets there first
	if err := w.Poll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders.set([]notify.Order{
		{ID: 1, Status: "FILLED", Side: "BUY", CompanyName: "A", Quantity: 1},
		{ID: 2, Status: "FILLED", Side: "BUY", CompanyName: "B", Quantity: 2},
	}, nil)
	if err := w.Poll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := w.Notifications()
	if len(got) != 1 || got[0].OrderID != 2 {
		t.Errorf("expected only order 2 to be notified, got %+v", got)
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w := newTestWatcher(session.NewRepository(store.NewMemory()), &stubOrders{}, nil)
	w.Close()
	w.Start(context.Background())
	w.Close()
}
