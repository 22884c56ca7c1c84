package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe("chat.", 10)
	defer cancel()

	b.Publish(New(KindUnread, map[string]int{"u1": 1}))

	select {
	case evt := <-ch:
		if evt.Kind != KindUnread {
			t.Errorf("got kind %q, want %q", evt.Kind, KindUnread)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPrefixFiltering(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe("conn.", 10)
	defer cancel()

	b.Publish(New(KindMessages, nil))
	b.Publish(New(KindConnStatus, nil))

	select {
	case evt := <-ch:
		if evt.Kind != KindConnStatus {
			t.Errorf("got kind %q, want %q", evt.Kind, KindConnStatus)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe("chat.", 10)
	cancel()

	b.Publish(New(KindMessages, nil))

	select {
	case evt := <-ch:
		t.Errorf("received event after cancel: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFullBufferDropsEvent(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe("chat.", 1)
	defer cancel()

	b.Publish(New(KindMessages, "first"))
	// Buffer is full; this one is dropped instead of blocking.
	b.Publish(New(KindMessages, "second"))

	evt := <-ch
	if evt.Payload != "first" {
		t.Errorf("payload = %v, want first", evt.Payload)
	}
}
