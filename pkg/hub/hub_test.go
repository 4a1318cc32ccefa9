package hub

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestBroadcastReachesSubscribers(t *testing.T) {
	h := New()
	a := h.Subscribe("logs")
	b := h.Subscribe("logs")
	other := h.Subscribe("status")

	h.Broadcast("logs", Event{Type: "tool_call", Data: "ping"})

	for name, c := range map[string]*Client{"a": a, "b": b} {
		select {
		case payload := <-c.Recv():
			var ev Event
			if err := json.Unmarshal(payload, &ev); err != nil {
				t.Fatalf("%s: unmarshaling: %v", name, err)
			}
			if ev.Type != "tool_call" {
				t.Errorf("%s: got type %q, want tool_call", name, ev.Type)
			}
			if ev.Time.IsZero() {
				t.Errorf("%s: event time not stamped", name)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: no event received", name)
		}
	}

	select {
	case <-other.Recv():
		t.Fatal("status subscriber received a logs event")
	default:
	}
}

func TestSlowClientDropped(t *testing.T) {
	h := New()
	c := h.Subscribe("logs")

	// Never drain; the buffer fills and the client gets dropped.
	for i := 0; i < 70; i++ {
		h.Broadcast("logs", Event{Type: "spam"})
	}

	if got := h.Subscribers("logs"); got != 0 {
		t.Errorf("got %d subscribers after overflow, want 0", got)
	}

	// Channel must be closed so the write pump exits.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-c.Recv():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("client channel never closed")
		}
	}
}

func TestConcurrentBroadcastAndDisconnect(t *testing.T) {
	h := New()

	// A subscriber that never drains its buffer, so concurrent
	// broadcasts race each other into the slow-client drop path.
	h.Subscribe("logs")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h.Broadcast("logs", Event{Type: "tool_call"})
			}
		}()
	}

	// Clients disconnecting while broadcasts are in flight must not
	// let a send hit their closed channel.
	for i := 0; i < 8; i++ {
		c := h.Subscribe("logs")
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Unsubscribe(c)
		}()
	}

	wg.Wait()

	if got := h.Subscribers("logs"); got != 0 {
		t.Errorf("got %d subscribers after churn, want 0", got)
	}
}

func TestUnsubscribeTwice(t *testing.T) {
	h := New()
	c := h.Subscribe("status")

	h.Unsubscribe(c)
	h.Unsubscribe(c)

	if got := h.Subscribers("status"); got != 0 {
		t.Errorf("got %d subscribers, want 0", got)
	}
}
