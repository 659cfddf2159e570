package realtime

import (
	"context"
	"sync"

	"github.com/iTeLLiiX/CraftConnect/internal/metrics"
)

// subscriberBuffer bounds how far a slow consumer may lag before events
// are dropped; droppers resync via a fresh history load.
const subscriberBuffer = 32

type subscriber struct {
	filter Filter
	ch     chan Event
}

// MemoryBus is the in-process bus used by a single instance.
type MemoryBus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[uint64]*subscriber)}
}

func (b *MemoryBus) Publish(_ context.Context, e Event) error {
	metrics.IncRealtimeEvent(string(e.Type))
	b.dispatch(e)
	return nil
}

// dispatch hands the event to every matching subscriber without blocking
// the publisher; a full buffer drops the event for that subscriber only.
func (b *MemoryBus) dispatch(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if !s.filter.Matches(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			metrics.IncRealtimeDropped()
		}
	}
}

func (b *MemoryBus) Subscribe(f Filter, fn func(Event)) (*Subscription, error) {
	s := &subscriber{filter: f, ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = s
	b.mu.Unlock()
	metrics.AddRealtimeSubscribers(1)

	go func() {
		for e := range s.ch {
			fn(e)
		}
	}()

	return &Subscription{stop: func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
			metrics.AddRealtimeSubscribers(-1)
		}
		b.mu.Unlock()
	}}, nil
}

// Close releases every remaining subscription.
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.subs {
		delete(b.subs, id)
		close(s.ch)
		metrics.AddRealtimeSubscribers(-1)
	}
}
