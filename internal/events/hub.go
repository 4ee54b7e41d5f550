// Package events fans session changes out to feed subscribers.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KylerCondran/4PlayerChess/internal/obslog"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

type Event = fourchessdto.Event

// Hub is a topic-per-session broadcaster. Publishing never blocks: a subscriber
// whose buffer is full misses the event and a warning is logged.
type Hub struct {
	mu     sync.Mutex
	buffer int
	topics map[string]*topic
	now    func() time.Time
}

type topic struct {
	seq  uint64
	subs map[*Subscription]struct{}
}

type Subscription struct {
	hub     *Hub
	topic   string
	ch      chan Event
	dropped uint64
	once    sync.Once
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{buffer: buffer, topics: make(map[string]*topic), now: time.Now}
}

// Subscribe registers for events on id. The channel is closed by Unsubscribe or CloseTopic.
func (h *Hub) Subscribe(id string) *Subscription {
	s := &Subscription{hub: h, topic: id, ch: make(chan Event, h.buffer)}
	h.mu.Lock()
	t := h.topicLocked(id)
	t.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (s *Subscription) Events() <-chan Event { return s.ch }

// Dropped counts events this subscriber missed because its buffer was full.
func (s *Subscription) Dropped() uint64 {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.dropped
}

// Unsubscribe detaches s and closes its channel. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if t, ok := s.hub.topics[s.topic]; ok {
		delete(t.subs, s)
	}
	s.close()
}

func (s *Subscription) close() { s.once.Do(func() { close(s.ch) }) }

func (h *Hub) topicLocked(id string) *topic {
	t, ok := h.topics[id]
	if !ok {
		t = &topic{subs: make(map[*Subscription]struct{})}
		h.topics[id] = t
	}
	return t
}

// Publish stamps each event with the topic's next sequence number and delivers it.
func (h *Hub) Publish(evs ...Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ev := range evs {
		t := h.topicLocked(ev.SessionID)
		t.seq++
		ev.Seq = t.seq
		if ev.At.IsZero() {
			ev.At = h.now()
		}
		h.deliverLocked(t, ev)
	}
}

func (h *Hub) deliverLocked(t *topic, ev Event) {
	for s := range t.subs {
		select {
		case s.ch <- ev:
		default:
			s.dropped++
			obslog.L().Warn("event_dropped",
				obslog.FieldSession(ev.SessionID),
				zap.String("kind", ev.Kind),
				zap.Uint64("seq", ev.Seq),
			)
		}
	}
}

// CloseTopic sends a final closed event, closes every subscriber and forgets the topic.
func (h *Hub) CloseTopic(id, reason, caption string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.topics[id]
	if !ok {
		return
	}
	t.seq++
	h.deliverLocked(t, Event{
		Seq:       t.seq,
		SessionID: id,
		Kind:      fourchessdto.EventClosed,
		Reason:    reason,
		Caption:   caption,
		At:        h.now(),
	})
	for s := range t.subs {
		s.close()
	}
	delete(h.topics, id)
}

// Subscribers returns how many subscribers id currently has.
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.topics[id]; ok {
		return len(t.subs)
	}
	return 0
}
