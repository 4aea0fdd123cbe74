package realtime

import (
	"context"
	"sync"
	"time"

	"tably/internal/realtime/metrics"
	id "tably/pkg/domain"
)

// Refresh is the hint delivered to a subscriber: the named projection may be
// stale and should be refetched. It intentionally carries no row data.
type Refresh struct {
	Topic string `json:"topic"`
}

// Hub owns the subscription sets and the per-subscription debounce. It
// implements Notifier for single-process deployments; multi-instance
// deployments put the redis bridge in front (see redis.go).
type Hub struct {
	debounce time.Duration

	mu   sync.Mutex
	subs map[id.TenantID]map[*Subscription]struct{}
}

// NewHub creates a hub with the given coalescing window per subscription topic.
func NewHub(debounce time.Duration) *Hub {
	return &Hub{
		debounce: debounce,
		subs:     make(map[id.TenantID]map[*Subscription]struct{}),
	}
}

// Subscribe opens a subscription for a tenant over the given topics. The
// caller owns the subscription and must Close it deterministically on
// teardown; Close releases the slot and every pending timer.
func (h *Hub) Subscribe(tenantID id.TenantID, topics ...string) *Subscription {
	topicSet := make(map[string]bool, len(topics))
	for _, t := range topics {
		if ValidTopic(t) {
			topicSet[t] = true
		}
	}

	sub := &Subscription{
		hub:      h,
		tenantID: tenantID,
		topics:   topicSet,
		ch:       make(chan Refresh, len(topicSet)+1),
		timers:   make(map[string]*time.Timer),
	}

	h.mu.Lock()
	set, ok := h.subs[tenantID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[tenantID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	metrics.Subscriptions.Inc()
	return sub
}

// Notify schedules a debounced refresh on every subscription of the tenant
// that watches the topic. Safe to call from any goroutine.
func (h *Hub) Notify(ctx context.Context, topic string, tenantID id.TenantID) {
	metrics.Notifications.WithLabelValues(topic).Inc()

	h.mu.Lock()
	targets := make([]*Subscription, 0, len(h.subs[tenantID]))
	for sub := range h.subs[tenantID] {
		if sub.topics[topic] {
			targets = append(targets, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range targets {
		sub.schedule(topic, h.debounce)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.tenantID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.tenantID)
	}
}

// Subscription is one dashboard's view into the fan-out: a refresh-hint
// channel plus one coalescing timer per watched topic.
type Subscription struct {
	hub      *Hub
	tenantID id.TenantID
	topics   map[string]bool
	ch       chan Refresh

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// C delivers debounced refresh hints. The channel is closed by Close.
func (s *Subscription) C() <-chan Refresh { return s.ch }

// schedule starts or extends the topic's coalescing timer: every new event
// within the window pushes the flush out, so a burst yields one hint.
func (s *Subscription) schedule(topic string, window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.timers[topic]; ok {
		t.Reset(window)
		return
	}
	s.timers[topic] = time.AfterFunc(window, func() { s.flush(topic) })
}

func (s *Subscription) flush(topic string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, topic)
	s.mu.Unlock()

	metrics.Flushes.WithLabelValues(topic).Inc()

	// Non-blocking: a slow consumer already has a refresh pending, and one
	// hint is as good as many.
	select {
	case s.ch <- Refresh{Topic: topic}:
	default:
	}
}

// Close releases the subscription slot, stops all pending timers and closes
// the hint channel. Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for topic, t := range s.timers {
		t.Stop()
		delete(s.timers, topic)
	}
	close(s.ch)
	s.mu.Unlock()

	s.hub.remove(s)
	metrics.Subscriptions.Dec()
}
