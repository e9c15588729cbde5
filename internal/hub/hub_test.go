package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/stocky/internal/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev events.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	return ev
}

func TestHubSnapshotThenFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshot := func() (events.Event, bool) {
		return events.New(events.TypeSnapshot, "1", "02.26 (목)", map[string]int{"pool_size": 16}), true
	}
	h := NewHub(snapshot, nil)
	feed := make(chan events.Event, 1)
	go h.Run(ctx, feed)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn := dial(t, srv)
	first := readEvent(t, conn)
	assert.Equal(t, events.TypeSnapshot, first.Type)
	assert.Equal(t, "02.26 (목)", first.VirtualDate)

	feed <- events.New(events.TypeClockTick, "1", "02.26 (목)", nil)
	next := readEvent(t, conn)
	assert.Equal(t, events.TypeClockTick, next.Type)
	assert.Equal(t, "1", next.UserID)
	assert.Equal(t, 1, h.ClientCount())

	feed <- events.New(events.TypeNewsReleased, "1", "02.26 (목)", map[string]int{"id": 7})
	released := readEvent(t, conn)
	assert.Equal(t, events.TypeNewsReleased, released.Type)
}

func TestHubShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil, nil)
	go h.Run(ctx, nil)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-h.Done()
	assert.Equal(t, 0, h.ClientCount())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(nil, nil)
	go h.Run(ctx, nil)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}
