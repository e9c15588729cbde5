package view

import (
	"sync"

	"github.com/zappabad/stocky/internal/notify"
)

// NotificationView keeps the most recent notifications, newest first.
type NotificationView struct {
	mu       sync.RWMutex
	items    []notify.Notification
	capacity int
}

// NewNotificationView creates a new NotificationView with the given capacity.
func NewNotificationView(capacity int) *NotificationView {
	if capacity <= 0 {
		capacity = 100
	}
	return &NotificationView{
		items:    make([]notify.Notification, 0, capacity),
		capacity: capacity,
	}
}

// Add puts n at the top, dropping the oldest entry when full.
func (v *NotificationView) Add(n notify.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.items) >= v.capacity {
		v.items = v.items[:v.capacity-1]
	}
	v.items = append([]notify.Notification{n}, v.items...)
}

// List returns a copy of all notifications.
func (v *NotificationView) List() []notify.Notification {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]notify.Notification, len(v.items))
	copy(out, v.items)
	return out
}

// Unread returns the number of unread notifications.
func (v *NotificationView) Unread() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	n := 0
	for _, it := range v.items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

// MarkAllRead flags every notification as read.
func (v *NotificationView) MarkAllRead() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.items {
		v.items[i].IsRead = true
	}
}
