// Package hub fans session events out to websocket clients.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/zappabad/stocky/internal/events"
	"github.com/zappabad/stocky/internal/metrics"
)

// SnapshotFunc returns the state a new client starts from. ok is false when
// there is nothing to send.
type SnapshotFunc func() (ev events.Event, ok bool)

// Hub maintains the set of active clients and fans bus events out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	snapshot   SnapshotFunc
	log        *slog.Logger

	mu sync.Mutex
}

// NewHub creates a Hub. snapshot and log may be nil.
func NewHub(snapshot SnapshotFunc, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		snapshot:   snapshot,
		log:        log,
	}
}

// Run handles registrations and broadcasts until ctx is done. Events read
// from feed are encoded and sent to every client; a nil feed is allowed.
func (h *Hub) Run(ctx context.Context, feed <-chan events.Event) {
	defer func() {
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		metrics.WebsocketClients.Set(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("websocket hub shutting down")
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(n))
			h.log.Debug("websocket client connected", "clients", n)
		case c := <-h.unregister:
			h.remove(c)
		case ev, ok := <-feed:
			if !ok {
				feed = nil
				continue
			}
			msg, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("encoding event", "type", string(ev.Type), "error", err)
				continue
			}
			h.fanOut(msg)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.WebsocketClients.Set(float64(n))
		h.log.Debug("websocket client disconnected", "clients", n)
	}
}

// fanOut drops clients whose send buffer is full.
func (h *Hub) fanOut(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
			h.log.Warn("dropping slow websocket client")
		}
	}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
