// Package realtime keeps connected clients in step with the database: a topic hub fans out
// messages, a catalog mirrors the event list and a dispatcher turns row changes into both.
package realtime

import (
	"sync"

	"eventify/internal/domain"
)

const defaultBuffer = 32

// Hub is an in-process topic broadcaster.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*subscription]struct{}
	buffer int
}

// NewHub returns an empty hub. Each subscriber gets a queue of buffer messages; buffer <= 0
// uses the default.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{topics: make(map[string]map[*subscription]struct{}), buffer: buffer}
}

var _ domain.Broadcaster = (*Hub)(nil)

// Publish delivers msg to every current subscriber of topic. A subscriber whose queue is full
// misses the message.
func (h *Hub) Publish(topic string, msg domain.Message) {
	msg.Topic = topic
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// Subscribe registers a new subscriber on topic.
func (h *Hub) Subscribe(topic string) domain.Subscription {
	sub := &subscription{hub: h, topic: topic, ch: make(chan domain.Message, h.buffer)}
	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*subscription]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Subscribers returns the number of live subscribers on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

func (h *Hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[sub.topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	}
}

type subscription struct {
	hub   *Hub
	topic string
	ch    chan domain.Message
	once  sync.Once
}

func (s *subscription) C() <-chan domain.Message { return s.ch }

// Close unsubscribes and closes the channel. Safe to call more than once.
func (s *subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}
