package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/greenshelf/scorer/pkg/logger"
)

// EventType distinguishes the events the session core emits
type EventType string

const (
	// EventAnalysisCompleted fires after every committed product analysis
	EventAnalysisCompleted EventType = "analysis_completed"
	// EventSessionStateChanged fires on every Idle/Active transition
	EventSessionStateChanged EventType = "session_state_changed"
)

// Event is one typed notification pushed to subscribers. Payload is the
// analysis result or the state snapshot, already safe to serialize.
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	At        time.Time   `json:"at"`
}

// Bus fans events out to subscribers. Publishing never blocks: a
// subscriber that cannot keep up has the event dropped, not queued
// without bound. Transports (websocket, telegram, polling) subscribe
// here instead of being wired into the session core.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]chan Event
	nextID  int
	buffer  int
	maxSubs int
}

func NewBus(buffer, maxSubs int) *Bus {
	return &Bus{
		subs:    make(map[int]chan Event),
		buffer:  buffer,
		maxSubs: maxSubs,
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe func. Returns a nil channel when the subscriber limit is
// reached.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.subs) >= b.maxSubs {
		logger.Warn("event subscriber limit reached", zap.Int("max", b.maxSubs))
		return nil, func() {}
	}

	id := b.nextID
	b.nextID++

	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	return ch, func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the event to every subscriber without blocking
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			logger.Debug("dropping event for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("type", string(event.Type)),
			)
		}
	}
}

// SubscriberCount reports the current number of subscribers
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
