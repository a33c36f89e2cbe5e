// Package sse implements C7, the SSE manager (spec.md §4.7): named
// broadcast channels for per-user OAuth notifications and per-session MCP
// protocol streams, with a configurable overflow policy and keepalive.
// A2A's per-task stream is bridged separately in internal/a2a/http.go by
// polling the task row directly (it is task-scoped, not channel-scoped,
// and needs no fan-out).
package sse

import (
	"sync"
	"sync/atomic"

	"github.com/pierre-fitness/pierre-server/internal/logx"
)

// OverflowPolicy governs what happens when a subscriber's buffered channel
// is full and a new event arrives (spec.md §4.7).
type OverflowPolicy string

const (
	// DropOldest evicts the oldest buffered event to make room for the
	// new one; the default policy. The subscriber sees a gap.
	DropOldest OverflowPolicy = "drop_oldest"
	// DropNew discards the incoming event, keeping the buffer as-is. The
	// subscriber sees a gap at the newest events rather than the oldest.
	DropNew OverflowPolicy = "drop_new"
	// CloseConnection terminates the subscriber's stream on first lag,
	// forcing the client to reconnect rather than silently skipping
	// events.
	CloseConnection OverflowPolicy = "close_connection"
)

// ParseOverflowPolicy maps the configuration string (spec.md §6 "SSE
// overflow policy" environment variable) to an OverflowPolicy, defaulting
// to DropOldest for anything unrecognized.
func ParseOverflowPolicy(s string) OverflowPolicy {
	switch OverflowPolicy(s) {
	case DropNew:
		return DropNew
	case CloseConnection:
		return CloseConnection
	default:
		return DropOldest
	}
}

// Event is one frame relayed to a subscriber. ID is local to the
// subscriber's own stream: spec.md §8 requires "for every SSE subscriber,
// event ids form a strictly monotonic positive integer sequence starting
// at 1", not a single sequence shared across every subscriber of a
// channel.
type Event struct {
	ID   int64
	Name string
	Data []byte
}

const subscriberBuffer = 32

// Subscriber is one connected client's view of a channel. A transport
// (this package's SSE handlers in http.go) ranges over Events until it closes or
// the hub closes it under CloseConnection.
type Subscriber struct {
	Events <-chan Event

	hub      *Hub
	family   string
	key      string
	id       uint64
	events   chan Event
	nextID   int64
	closedMu sync.Mutex
	closed   bool
}

// Close deregisters the subscriber. Safe to call multiple times and from
// any exit path (normal close, cancellation, server shutdown — spec.md
// §4.7 "channel teardown deregisters the subscriber in all exit paths").
func (s *Subscriber) Close() {
	s.hub.unsubscribe(s)
}

func (s *Subscriber) deliver(name string, data []byte, overflow OverflowPolicy) {
	s.closedMu.Lock()
	if s.closed {
		s.closedMu.Unlock()
		return
	}
	s.closedMu.Unlock()

	ev := Event{ID: atomic.AddInt64(&s.nextID, 1), Name: name, Data: data}

	select {
	case s.events <- ev:
		return
	default:
	}

	switch overflow {
	case CloseConnection:
		logx.WithField("family", s.family).WithField("key", s.key).
			Warn("sse: subscriber lagging, closing connection per overflow policy")
		s.hub.unsubscribe(s)
	case DropNew:
		logx.WithField("family", s.family).WithField("key", s.key).
			Warn("sse: subscriber buffer full, dropping new event")
	default: // DropOldest
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- ev:
		default:
		}
		logx.WithField("family", s.family).WithField("key", s.key).
			Warn("sse: subscriber lagging, dropped oldest buffered event")
	}
}

// channel is one (family, key) broadcast group, e.g. notifications for a
// single user_id.
type channel struct {
	mu   sync.Mutex
	subs map[uint64]*Subscriber
}

// Hub owns every channel family. One Hub per process; the composition
// root builds a single instance and wires it into the REST adapter's OAuth
// callback handler (publisher) and this package's SSE routes (subscribers).
type Hub struct {
	overflow OverflowPolicy

	mu       sync.Mutex
	channels map[string]map[string]*channel // family -> key -> channel
	nextSub  uint64
}

// NewHub builds a Hub with the deployment's configured overflow policy
// (spec.md §6).
func NewHub(overflow OverflowPolicy) *Hub {
	return &Hub{
		overflow: overflow,
		channels: make(map[string]map[string]*channel),
	}
}

func (h *Hub) channelFor(family, key string) *channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	byKey, ok := h.channels[family]
	if !ok {
		byKey = make(map[string]*channel)
		h.channels[family] = byKey
	}
	ch, ok := byKey[key]
	if !ok {
		ch = &channel{subs: make(map[uint64]*Subscriber)}
		byKey[key] = ch
	}
	return ch
}

// Subscribe joins (family, key) — e.g. ("notifications", userID) — and
// emits a first `connection` event carrying `connected` (spec.md §4.7
// step 2) before returning.
func (h *Hub) Subscribe(family, key string) *Subscriber {
	ch := h.channelFor(family, key)

	h.mu.Lock()
	h.nextSub++
	id := h.nextSub
	h.mu.Unlock()

	events := make(chan Event, subscriberBuffer)
	sub := &Subscriber{Events: events, hub: h, family: family, key: key, id: id, events: events}

	ch.mu.Lock()
	ch.subs[id] = sub
	ch.mu.Unlock()

	sub.deliver("connection", []byte(`{"status":"connected"}`), h.overflow)
	return sub
}

func (h *Hub) unsubscribe(sub *Subscriber) {
	sub.closedMu.Lock()
	if sub.closed {
		sub.closedMu.Unlock()
		return
	}
	sub.closed = true
	sub.closedMu.Unlock()

	h.mu.Lock()
	byKey, ok := h.channels[sub.family]
	var ch *channel
	if ok {
		ch, ok = byKey[sub.key]
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	ch.mu.Lock()
	delete(ch.subs, sub.id)
	n := len(ch.subs)
	ch.mu.Unlock()
	close(sub.events)

	if n == 0 {
		h.mu.Lock()
		if byKey, ok := h.channels[sub.family]; ok && byKey[sub.key] == ch {
			delete(byKey, sub.key)
		}
		h.mu.Unlock()
	}
}

// Publish broadcasts name/data to every current subscriber of (family,
// key). A channel with no subscribers silently drops the event — this is
// the fan-out primitive the OAuth callback's "mark delivered once flushed
// to at least one subscriber, or after a grace window" policy is built on
// top of in internal/restapi.
func (h *Hub) Publish(family, key, name string, data []byte) int {
	h.mu.Lock()
	byKey, ok := h.channels[family]
	var ch *channel
	if ok {
		ch, ok = byKey[key]
	}
	h.mu.Unlock()
	if !ok {
		return 0
	}

	ch.mu.Lock()
	subs := make([]*Subscriber, 0, len(ch.subs))
	for _, s := range ch.subs {
		subs = append(subs, s)
	}
	ch.mu.Unlock()

	for _, s := range subs {
		s.deliver(name, data, h.overflow)
	}
	return len(subs)
}

// Shutdown broadcasts a terminal event on every open channel of every
// family and closes every subscriber, per spec.md §5's graceful-shutdown
// requirement ("broadcast a terminal event on all SSE channels").
func (h *Hub) Shutdown() {
	h.mu.Lock()
	var all []*Subscriber
	for _, byKey := range h.channels {
		for _, ch := range byKey {
			ch.mu.Lock()
			for _, s := range ch.subs {
				all = append(all, s)
			}
			ch.mu.Unlock()
		}
	}
	h.mu.Unlock()

	for _, s := range all {
		s.deliver("shutdown", []byte(`{"status":"terminating"}`), DropOldest)
		h.unsubscribe(s)
	}
}

// Family name constants for the three channel families spec.md §4.7 names.
const (
	FamilyNotifications = "notifications"
	FamilyProtocol      = "protocol"
	FamilyA2ATasks      = "a2a_tasks"
)
