package emitter

import (
	"sync"

	"github.com/lightningcore/matchcore/domain"
)

// Hub publishes trades, BBO updates, and L2 snapshots to any number of
// subscribers. It is process-wide, not per-symbol: every event carries its
// own Symbol field and subscribers filter if they only care about one pair.
type Hub struct {
	capacity int

	mu      sync.Mutex
	nextID  int
	trades  map[int]*Subscription[*domain.Trade]
	bbos    map[int]*Subscription[domain.BBO]
	snaps   map[int]*Subscription[domain.L2Snapshot]
}

// NewHub creates a Hub whose per-subscriber ring buffers hold capacity
// entries (must be a power of two).
func NewHub(capacity int) *Hub {
	return &Hub{
		capacity: capacity,
		trades:   make(map[int]*Subscription[*domain.Trade]),
		bbos:     make(map[int]*Subscription[domain.BBO]),
		snaps:    make(map[int]*Subscription[domain.L2Snapshot]),
	}
}

// Subscription is a single consumer's view of a stream: a ring buffer plus a
// doorbell channel the consumer waits on. Draining never blocks the
// publisher; the doorbell send is non-blocking so a slow or absent consumer
// never stalls Hub.PublishTrade/BBO/Snapshot.
type Subscription[T any] struct {
	id      int
	ring    *ring[T]
	doorbell chan struct{}
}

// Next blocks until at least one event is available (or the hub signals a
// publish that turned out to already be drained by another call), then
// returns every event queued since the last Next call, in order.
func (s *Subscription[T]) Next() []T {
	<-s.doorbell
	return s.ring.drain()
}

// TryNext returns queued events without blocking; nil if none are pending.
func (s *Subscription[T]) TryNext() []T {
	select {
	case <-s.doorbell:
	default:
	}
	return s.ring.drain()
}

func ring_publish[T any](r *ring[T], doorbell chan struct{}, v T) {
	r.publish(v)
	select {
	case doorbell <- struct{}{}:
	default:
	}
}

// SubscribeTrades registers a new trade-stream subscriber.
func (h *Hub) SubscribeTrades() *Subscription[*domain.Trade] {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	sub := &Subscription[*domain.Trade]{id: id, ring: newRing[*domain.Trade](h.capacity), doorbell: make(chan struct{}, 1)}
	h.trades[id] = sub
	return sub
}

// SubscribeBBO registers a new BBO-delta subscriber.
func (h *Hub) SubscribeBBO() *Subscription[domain.BBO] {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	sub := &Subscription[domain.BBO]{id: id, ring: newRing[domain.BBO](h.capacity), doorbell: make(chan struct{}, 1)}
	h.bbos[id] = sub
	return sub
}

// SubscribeSnapshots registers a new L2-snapshot subscriber.
func (h *Hub) SubscribeSnapshots() *Subscription[domain.L2Snapshot] {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	sub := &Subscription[domain.L2Snapshot]{id: id, ring: newRing[domain.L2Snapshot](h.capacity), doorbell: make(chan struct{}, 1)}
	h.snaps[id] = sub
	return sub
}

// Unsubscribe removes a subscription from its stream. Safe to call more
// than once.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.trades, id)
	delete(h.bbos, id)
	delete(h.snaps, id)
}

// PublishTrades fans a contiguous trade batch out to every trade subscriber.
// Called once per matching command so a batch lands contiguously in every
// subscriber's ring, never interleaved with another command's trades.
func (h *Hub) PublishTrades(trades []*domain.Trade) {
	if len(trades) == 0 {
		return
	}
	h.mu.Lock()
	subs := make([]*Subscription[*domain.Trade], 0, len(h.trades))
	for _, s := range h.trades {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		for _, t := range trades {
			ring_publish(s.ring, s.doorbell, t)
		}
	}
}

// PublishBBO fans a BBO update out to every BBO subscriber.
func (h *Hub) PublishBBO(bbo domain.BBO) {
	h.mu.Lock()
	subs := make([]*Subscription[domain.BBO], 0, len(h.bbos))
	for _, s := range h.bbos {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		ring_publish(s.ring, s.doorbell, bbo)
	}
}

// PublishSnapshot fans an L2 snapshot out to every snapshot subscriber.
func (h *Hub) PublishSnapshot(snap domain.L2Snapshot) {
	h.mu.Lock()
	subs := make([]*Subscription[domain.L2Snapshot], 0, len(h.snaps))
	for _, s := range h.snaps {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		ring_publish(s.ring, s.doorbell, snap)
	}
}
