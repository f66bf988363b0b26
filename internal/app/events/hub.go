/*
Package events contains the push-notification fan-out for live collaborative updates.

This file defines the Hub, the central registry of per-topic subscriber sets.
Handlers publish change notifications to a topic (e.g. "list.<id>") after every
mutation; each websocket subscriber on that topic receives the serialized payload.
Messages are invalidation signals only; durable state always comes from a
subsequent fetch.
*/
package events

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"lia/internal/pkg/logx"
)

const subscriberChannelBuffer = 64

// Hub coordinates all active push-topic subscriptions.
type Hub struct {
	// topics maps a topic name to the set of its active subscribers.
	topics map[string]map[*Subscriber]struct{}

	// mu protects concurrent access to the topics map.
	mu sync.RWMutex

	// closed blocks new subscriptions once Shutdown has started.
	closed bool

	// structured logger with Hub context.
	logger zerolog.Logger
}

// Subscriber is a single listener on one topic.
type Subscriber struct {
	// Topic is the topic name this subscriber is registered on.
	Topic string

	// send queues serialized messages awaiting delivery.
	send chan []byte
}

// Messages exposes the subscriber's delivery queue.
func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}

// NewHub constructs and returns a new Hub instance.
func NewHub() *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	return &Hub{
		topics: make(map[string]map[*Subscriber]struct{}),
		logger: hubLogger,
	}
}

// Subscribe registers a new subscriber on the given topic.
// It returns nil when the hub is shutting down.
func (h *Hub) Subscribe(topic string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	sub := &Subscriber{
		Topic: topic,
		send:  make(chan []byte, subscriberChannelBuffer),
	}

	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[*Subscriber]struct{})
	}
	h.topics[topic][sub] = struct{}{}

	h.logger.Debug().
		Str("topic", topic).
		Int("topic_subscribers", len(h.topics[topic])).
		Msg("Subscriber registered.")

	return sub
}

// Unsubscribe removes the subscriber and closes its delivery queue.
// It is safe to call for an already-removed subscriber.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[sub.Topic]
	if !ok {
		return
	}

	if _, ok := subs[sub]; !ok {
		return
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.Topic)
	}
	close(sub.send)

	h.logger.Debug().
		Str("topic", sub.Topic).
		Msg("Subscriber removed.")
}

// Publish serializes payload and delivers it to every subscriber on the topic.
// Delivery is non-blocking: a subscriber with a full queue is skipped rather
// than stalling the mutation that triggered the event.
func (h *Hub) Publish(topic string, payload any) {
	message, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().
			Str("topic", topic).
			Err(err).
			Msg("Error marshaling event payload.")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[topic] {
		select {
		case sub.send <- message:
		default:
			h.logger.Warn().
				Str("topic", topic).
				Msg("Subscriber queue full, dropping event.")
		}
	}
}

// Shutdown closes every subscriber queue and blocks new subscriptions.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for topic, subs := range h.topics {
		for sub := range subs {
			close(sub.send)
		}
		delete(h.topics, topic)
	}

	h.logger.Info().Msg("Hub shutdown complete.")
}
