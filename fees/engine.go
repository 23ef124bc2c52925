// Package fees implements the per-symbol maker/taker fee schedule and the
// notional-based fee calculation applied to every trade before emission.
package fees

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lightningcore/matchcore/domain"
)

// Engine holds a process-wide default (maker, taker) rate pair and any
// per-symbol overrides. A schedule change is observed atomically by every
// subsequent Quote/Apply call via the engine's mutex — the spec's
// requirement that schedule changes "be observed atomically" without
// necessarily routing through a symbol's serial point.
type Engine struct {
	mu         sync.RWMutex
	defaultFee domain.FeeSchedule
	bySymbol   map[string]domain.FeeSchedule
}

// NewEngine creates a fee engine with the given process-wide default rates.
func NewEngine(defaultMaker, defaultTaker decimal.Decimal) *Engine {
	return &Engine{
		defaultFee: domain.FeeSchedule{MakerRate: defaultMaker, TakerRate: defaultTaker},
		bySymbol:   make(map[string]domain.FeeSchedule),
	}
}

// Quote returns the effective schedule for a symbol: its own schedule if one
// was set, otherwise a copy of the current process-wide default with Symbol
// filled in. The copy is not stored, so a later SetDefaultRates applies to
// every symbol without its own schedule; the default itself is never mutated.
func (e *Engine) Quote(symbol string) domain.FeeSchedule {
	e.mu.RLock()
	if sched, ok := e.bySymbol[symbol]; ok {
		e.mu.RUnlock()
		return sched
	}
	def := e.defaultFee
	e.mu.RUnlock()
	def.Symbol = symbol
	return def
}

// SetSchedule installs a per-symbol schedule. Rejects negative rates.
func (e *Engine) SetSchedule(symbol string, maker, taker decimal.Decimal) (domain.FeeSchedule, error) {
	sched := domain.FeeSchedule{Symbol: symbol, MakerRate: maker, TakerRate: taker}
	if !sched.Valid() {
		return domain.FeeSchedule{}, domain.ErrInvalidRate
	}
	e.mu.Lock()
	e.bySymbol[symbol] = sched
	e.mu.Unlock()
	return sched, nil
}

// SetDefaultRates installs the process-wide default pair. Rejects negative
// rates. Existing per-symbol overrides are unaffected.
func (e *Engine) SetDefaultRates(maker, taker decimal.Decimal) error {
	sched := domain.FeeSchedule{MakerRate: maker, TakerRate: taker}
	if !sched.Valid() {
		return domain.ErrInvalidRate
	}
	e.mu.Lock()
	e.defaultFee = sched
	e.mu.Unlock()
	return nil
}

// Apply computes and attaches maker/taker fees and rates to a trade in
// place, using the rate schedule in effect for the trade's symbol at the
// moment Apply is called. notional = price * quantity; fee = notional * rate.
func (e *Engine) Apply(t *domain.Trade) {
	sched := e.Quote(t.Symbol)
	notional := t.Price.Mul(t.Quantity)
	t.MakerRate = sched.MakerRate
	t.TakerRate = sched.TakerRate
	t.MakerFee = notional.Mul(sched.MakerRate)
	t.TakerFee = notional.Mul(sched.TakerRate)
}
