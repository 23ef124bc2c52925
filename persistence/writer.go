// Package persistence defines the durable-store interface the core invokes
// as orders change state and on every trade. The core must remain correct
// with no Writer configured at all — it operates purely in memory.
package persistence

import (
	"sync"

	"github.com/lightningcore/matchcore/domain"
)

// Writer is consumed, not implemented, by the core: the REST/WS edge and its
// durable store live outside this module's scope. engine.Symbol calls
// SaveOrder for a submitted order once it is in the trigger table or the book
// has processed it, for a canceled order, and for each promoted trigger
// order after the book has processed it. Drafts rejected by validation are
// not saved, and resting orders filled as makers by another order are not
// passed to SaveOrder again: their fills are visible only through SaveTrade.
// SaveTrade is called on every trade and SaveFeeSchedule on every
// per-symbol schedule change. BulkLoad returns what the store holds; nothing
// in this module calls it.
type Writer interface {
	SaveOrder(o *domain.Order) error
	SaveTrade(t *domain.Trade) error
	SaveFeeSchedule(f domain.FeeSchedule) error
	BulkLoad() ([]*domain.Order, []domain.FeeSchedule, error)
}

// NoopWriter discards everything. It is the default when no Writer is
// configured, kept explicit so callers can see in a constructor call that
// persistence is intentionally absent rather than accidentally nil.
type NoopWriter struct{}

func (NoopWriter) SaveOrder(*domain.Order) error       { return nil }
func (NoopWriter) SaveTrade(*domain.Trade) error       { return nil }
func (NoopWriter) SaveFeeSchedule(domain.FeeSchedule) error { return nil }
func (NoopWriter) BulkLoad() ([]*domain.Order, []domain.FeeSchedule, error) {
	return nil, nil, nil
}

// MemoryWriter is an in-memory Writer used by tests and cmd/bench, where a
// real durable store isn't available but callers still want something to
// inspect afterwards.
type MemoryWriter struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	trades    []*domain.Trade
	schedules []domain.FeeSchedule
}

// NewMemoryWriter creates an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{orders: make(map[string]*domain.Order)}
}

func (w *MemoryWriter) SaveOrder(o *domain.Order) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := *o
	w.orders[o.ID] = &cp
	return nil
}

func (w *MemoryWriter) SaveTrade(t *domain.Trade) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := *t
	w.trades = append(w.trades, &cp)
	return nil
}

func (w *MemoryWriter) SaveFeeSchedule(f domain.FeeSchedule) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.schedules = append(w.schedules, f)
	return nil
}

func (w *MemoryWriter) BulkLoad() ([]*domain.Order, []domain.FeeSchedule, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	orders := make([]*domain.Order, 0, len(w.orders))
	for _, o := range w.orders {
		cp := *o
		orders = append(orders, &cp)
	}
	schedules := append([]domain.FeeSchedule(nil), w.schedules...)
	return orders, schedules, nil
}

// Trades returns every trade saved so far, for test assertions.
func (w *MemoryWriter) Trades() []*domain.Trade {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*domain.Trade(nil), w.trades...)
}
