package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrHubClosed is returned by Publish after the hub stopped.
var ErrHubClosed = errors.New("hub closed")

// subscriptionBuffer is how many undelivered events a subscriber may lag behind
const subscriptionBuffer = 64

// Event is one realtime notification on a topic (a chat channel id)
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Origin    string          `json:"origin,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent marshals data into a new event for topic
func NewEvent(topic, eventType string, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Subscription receives the events of one topic until Close is called.
type Subscription struct {
	C <-chan *Event

	ch    chan *Event
	topic string
	hub   *Hub
	once  sync.Once
}

// Topic returns the subscribed topic
func (s *Subscription) Topic() string {
	return s.topic
}

// Close releases the subscription and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.removeSubscription(s)
	})
}

// Hub fans events out to the subscribers of each topic. Events published
// through the hub reach a topic's subscribers in publish order.
type Hub struct {
	// Subscriptions organized by topic
	subs map[string]map[*Subscription]bool

	broadcast chan *Event

	// relay forwards locally published events to other instances
	relay func(*Event)

	mu      sync.RWMutex
	relayMu sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:      make(map[string]map[*Subscription]bool),
		broadcast: make(chan *Event),
		done:      make(chan struct{}),
		logger:    logger,
	}
}

// Run delivers published events until ctx is cancelled, then closes every
// open subscription.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-h.broadcast:
			h.deliver(evt)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for topic, subs := range h.subs {
			for s := range subs {
				close(s.ch)
			}
			delete(h.subs, topic)
		}
		h.logger.Info().Msg("Realtime hub stopped")
	})
}

// SetRelay installs the function every locally published event is passed to
func (h *Hub) SetRelay(relay func(*Event)) {
	h.relayMu.Lock()
	defer h.relayMu.Unlock()
	h.relay = relay
}

// Publish delivers evt to the topic's local subscribers and hands it to the relay.
func (h *Hub) Publish(ctx context.Context, evt *Event) error {
	if err := h.enqueue(ctx, evt); err != nil {
		return err
	}

	h.relayMu.RLock()
	relay := h.relay
	h.relayMu.RUnlock()
	if relay != nil {
		relay(evt)
	}
	return nil
}

// Inject delivers an event received from another instance without relaying it back
func (h *Hub) Inject(ctx context.Context, evt *Event) error {
	return h.enqueue(ctx, evt)
}

func (h *Hub) enqueue(ctx context.Context, evt *Event) error {
	select {
	case h.broadcast <- evt:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a listener for topic
func (h *Hub) Subscribe(topic string) (*Subscription, error) {
	ch := make(chan *Event, subscriptionBuffer)
	s := &Subscription{C: ch, ch: ch, topic: topic, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return nil, ErrHubClosed
	default:
	}

	if _, ok := h.subs[topic]; !ok {
		h.subs[topic] = make(map[*Subscription]bool)
	}
	h.subs[topic][s] = true

	h.logger.Debug().Str("topic", topic).Int("subscribers", len(h.subs[topic])).Msg("Subscription added")
	return s, nil
}

func (h *Hub) removeSubscription(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subs[s.topic]
	if !ok || !subs[s] {
		// already released by stop
		return
	}
	delete(subs, s)
	close(s.ch)
	if len(subs) == 0 {
		delete(h.subs, s.topic)
	}

	h.logger.Debug().Str("topic", s.topic).Msg("Subscription released")
}

// deliver never blocks: a subscriber whose buffer is full misses the event
func (h *Hub) deliver(evt *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subs[evt.Topic]
	if !ok {
		h.logger.Debug().Str("topic", evt.Topic).Msg("No subscribers for event")
		return
	}

	for s := range subs {
		select {
		case s.ch <- evt:
		default:
			h.logger.Warn().
				Str("topic", evt.Topic).
				Str("eventType", evt.Type).
				Msg("Skipped slow subscriber")
		}
	}
}

// SubscriberCount returns the number of local subscribers of a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
