package pipeline

import (
	"sync"

	"github.com/google/uuid"
)

// Handler receives published MetricValues. Handlers run synchronously on
// the publishing goroutine and must not block.
type Handler func(MetricValue)

// Bus is the explicit observer registry. Subscriptions are fine-grained:
// a handler registered for battery.0.voltage is never called for
// battery.0.current. Taps receive everything and exist for pipeline-
// internal consumers like the MQTT publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[uuid.UUID]Handler
	taps map[uuid.UUID]Handler

	// onChange observes the subscription count after every register and
	// close. Set once before the bus is shared.
	onChange func(count int)
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[uuid.UUID]Handler),
		taps: make(map[uuid.UUID]Handler),
	}
}

// OnChange installs the subscription-count observer.
func (b *Bus) OnChange(fn func(count int)) {
	b.onChange = fn
}

func (b *Bus) countLocked() int {
	n := len(b.taps)
	for _, m := range b.subs {
		n += len(m)
	}
	return n
}

// Subscription undoes a Subscribe or Tap when closed. Closing twice is
// harmless.
type Subscription struct {
	bus  *Bus
	path string
	id   uuid.UUID
	tap  bool
}

func (s *Subscription) Close() {
	if s == nil || s.bus == nil {
		return
	}
	b := s.bus
	b.mu.Lock()
	if s.tap {
		delete(b.taps, s.id)
	} else if m, ok := b.subs[s.path]; ok {
		delete(m, s.id)
		if len(m) == 0 {
			delete(b.subs, s.path)
		}
	}
	n := b.countLocked()
	b.mu.Unlock()
	s.bus = nil
	if b.onChange != nil {
		b.onChange(n)
	}
}

// Subscribe registers a handler for one exact metric path.
func (b *Bus) Subscribe(path string, h Handler) *Subscription {
	id := uuid.New()
	b.mu.Lock()
	m, ok := b.subs[path]
	if !ok {
		m = make(map[uuid.UUID]Handler)
		b.subs[path] = m
	}
	m[id] = h
	n := b.countLocked()
	b.mu.Unlock()
	if b.onChange != nil {
		b.onChange(n)
	}
	return &Subscription{bus: b, path: path, id: id}
}

// Tap registers a handler for every published MetricValue.
func (b *Bus) Tap(h Handler) *Subscription {
	id := uuid.New()
	b.mu.Lock()
	b.taps[id] = h
	n := b.countLocked()
	b.mu.Unlock()
	if b.onChange != nil {
		b.onChange(n)
	}
	return &Subscription{bus: b, id: id, tap: true}
}

// Publish fans a MetricValue out to the subscribers of its path and to
// all taps, synchronously, and returns how many handlers ran. The loop is
// bounded by the subscriber count for the changed path only.
func (b *Bus) Publish(mv MetricValue) int {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[mv.Path])+len(b.taps))
	for _, h := range b.subs[mv.Path] {
		handlers = append(handlers, h)
	}
	for _, h := range b.taps {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(mv)
	}
	return len(handlers)
}

// SubscriberCount reports registered path subscriptions plus taps.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countLocked()
}
