package view

import (
	"sync"

	"github.com/zappabad/stocky/internal/news"
)

// DefaultCapacity is the number of records a FeedView keeps for display.
const DefaultCapacity = 50

// NewsEvent carries a record released into the active feed.
type NewsEvent struct {
	Item news.Record
}

// FeedView is the display side of a user's active feed: newest first,
// repeated titles hidden, bounded to a fixed number of entries.
type FeedView struct {
	mu    sync.RWMutex
	items []news.Record
	size  int
}

// NewFeedView creates a new FeedView with the given capacity.
func NewFeedView(capacity int) *FeedView {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FeedView{
		items: make([]news.Record, 0, capacity),
		size:  capacity,
	}
}

// Reset replaces the view contents with a newest-first feed.
func (v *FeedView) Reset(active []news.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.items = v.items[:0]
	for _, r := range Dedupe(active) {
		if len(v.items) >= v.size {
			break
		}
		v.items = append(v.items, r)
	}
}

// Apply puts a released record at the top of the view.
func (v *FeedView) Apply(ev NewsEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, r := range v.items {
		if r.Title == ev.Item.Title {
			// newest copy wins
			v.items = append(v.items[:i], v.items[i+1:]...)
			break
		}
	}

	v.items = append(v.items, news.Record{})
	copy(v.items[1:], v.items)
	v.items[0] = ev.Item
	if len(v.items) > v.size {
		v.items = v.items[:v.size]
	}
}

// Latest returns up to n records, newest first.
// Returns a copy (not internal references).
func (v *FeedView) Latest(n int) []news.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if n <= 0 || len(v.items) == 0 {
		return nil
	}
	if n > len(v.items) {
		n = len(v.items)
	}

	out := make([]news.Record, n)
	copy(out, v.items[:n])
	return out
}

// Count returns the number of records in the view.
func (v *FeedView) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}

// Dedupe drops records whose title already appeared earlier in feed.
func Dedupe(feed []news.Record) []news.Record {
	seen := make(map[string]bool, len(feed))
	out := make([]news.Record, 0, len(feed))
	for _, r := range feed {
		if seen[r.Title] {
			continue
		}
		seen[r.Title] = true
		out = append(out, r)
	}
	return out
}
