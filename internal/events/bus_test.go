package events

import (
	"testing"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a, unsubA := bus.Subscribe(4)
	b, unsubB := bus.Subscribe(4)
	defer unsubA()
	defer unsubB()

	bus.Publish(New(TypeClockTick, "1", "02.26 (목)", nil))

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if ev.Type != TypeClockTick {
				t.Errorf("%s: expected %s, got %s", name, TypeClockTick, ev.Type)
			}
			if ev.ID == "" {
				t.Errorf("%s: expected an event id", name)
			}
		default:
			t.Errorf("%s: expected an event", name)
		}
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(1)
	defer unsub()

	bus.Publish(New(TypeClockTick, "1", "", nil))
	bus.Publish(New(TypeClockTick, "1", "", nil))
	bus.Publish(New(TypeClockTick, "1", "", nil))

	if got := bus.DroppedEvents(); got != 2 {
		t.Errorf("expected 2 dropped events, got %d", got)
	}
	if len(ch) != 1 {
		t.Errorf("expected 1 buffered event, got %d", len(ch))
	}
}

func TestBusUnsubscribeAndClose(t *testing.T) {
	bus := NewBus()

	ch, unsub := bus.Subscribe(1)
	unsub()
	unsub()
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after unsubscribe")
	}

	other, unsubOther := bus.Subscribe(1)
	bus.Close()
	bus.Close()
	unsubOther()
	if _, ok := <-other; ok {
		t.Error("expected closed channel after Close")
	}

	late, _ := bus.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("expected closed channel when subscribing after Close")
	}

	// must not panic
	bus.Publish(New(TypeSessionEnded, "1", "", nil))
}
