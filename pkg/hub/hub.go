// Package hub fans out dashboard events to connected websocket clients.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/zephyrlabs/zephyr/internal/log"
)

// Event is one message broadcast to every subscriber of a topic.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// Hub tracks subscribers per topic and broadcasts events to them.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{topics: make(map[string]map[*Client]struct{})}
}

// Subscribe registers a client for a topic and returns it. The caller owns
// the client's write pump and must call Unsubscribe when the socket closes.
func (h *Hub) Subscribe(topic string) *Client {
	c := &Client{
		topic: topic,
		send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][c] = struct{}{}
	h.mu.Unlock()

	return c
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[c.topic]
	if !ok {
		return
	}
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	close(c.send)
}

// Broadcast sends an event to every subscriber of a topic. Slow clients
// are dropped rather than allowed to block the publisher.
func (h *Hub) Broadcast(topic string, ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error("hub: marshaling event", "topic", topic, "err", err)
		return
	}

	// Sends happen under the read lock: Unsubscribe closes c.send under
	// the write lock, so no send can interleave with a close. Slow
	// clients are collected here and dropped after the lock is released.
	h.mu.RLock()
	var slow []*Client
	for c := range h.topics[topic] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn("hub: dropping slow client", "topic", topic)
		h.Unsubscribe(c)
	}
}

// Subscribers returns the number of clients on a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
