// Package trigger implements the per-symbol table of untriggered conditional
// orders (STOP_LOSS, STOP_LIMIT, TAKE_PROFIT) and the activation logic that
// promotes them into regular orders when a trade print crosses their stop
// price.
package trigger

import (
	"github.com/shopspring/decimal"

	"github.com/lightningcore/matchcore/domain"
)

// Table holds the PENDING_TRIGGER orders for one symbol. Evaluation order
// within a batch is insertion order, which is deterministic and reproducible
// per the spec's requirement ("deterministic per implementation").
type Table struct {
	orders map[string]*domain.Order
	order  []string // insertion order, for deterministic evaluation
}

// New creates an empty trigger table.
func New() *Table {
	return &Table{orders: make(map[string]*domain.Order)}
}

// Insert adds a conditional order to the table. The caller is responsible
// for having already set o.Status = domain.PendingTrigger.
func (t *Table) Insert(o *domain.Order) {
	if _, exists := t.orders[o.ID]; exists {
		return
	}
	t.orders[o.ID] = o
	t.order = append(t.order, o.ID)
}

// Cancel removes a pending order from the table. Returns ErrNotFound if the
// id is not present (already promoted or never inserted).
func (t *Table) Cancel(orderID string) (*domain.Order, error) {
	o, ok := t.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t.remove(orderID)
	o.Status = domain.Canceled
	return o, nil
}

// Lookup returns a pending order by id, or ErrNotFound.
func (t *Table) Lookup(orderID string) (*domain.Order, error) {
	o, ok := t.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (t *Table) remove(orderID string) {
	delete(t.orders, orderID)
	for i, id := range t.order {
		if id == orderID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// triggered applies the activation predicate for the last trade price.
func triggered(o *domain.Order, lastPrice decimal.Decimal) bool {
	switch o.Variant {
	case domain.StopLoss, domain.StopLimit:
		if o.Side == domain.SideBuy {
			return lastPrice.GreaterThanOrEqual(o.StopPrice)
		}
		return lastPrice.LessThanOrEqual(o.StopPrice)
	case domain.TakeProfit:
		if o.Side == domain.SideBuy {
			return lastPrice.LessThanOrEqual(o.StopPrice)
		}
		return lastPrice.GreaterThanOrEqual(o.StopPrice)
	default:
		return false
	}
}

// promote rewrites a triggered order per the spec's promotion rules:
// STOP_LOSS/TAKE_PROFIT become MARKET; STOP_LIMIT becomes LIMIT at its
// post-trigger limit price. Both become OPEN, ready for the regular book
// path.
func promote(o *domain.Order) {
	switch o.Variant {
	case domain.StopLoss, domain.TakeProfit:
		o.Variant = domain.Market
	case domain.StopLimit:
		o.Variant = domain.Limit
		o.Price = o.PostTriggerLimitPrice
	}
	o.Status = domain.Open
}

// Evaluate scans every pending order exactly once against lastPrice and
// returns the ones that triggered, rewritten and removed from the table.
// Each order can be promoted at most once: it is removed from the table in
// the same pass that promotes it, so it cannot be re-evaluated by a later
// call within the same drain (the spec's "stop-order storm" bound).
func (t *Table) Evaluate(lastPrice decimal.Decimal) []*domain.Order {
	var promoted []*domain.Order
	for _, id := range append([]string(nil), t.order...) {
		o, ok := t.orders[id]
		if !ok {
			continue
		}
		if triggered(o, lastPrice) {
			t.remove(id)
			promote(o)
			promoted = append(promoted, o)
		}
	}
	return promoted
}

// Len reports how many orders are currently pending trigger.
func (t *Table) Len() int {
	return len(t.orders)
}
