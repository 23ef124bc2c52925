// Package orderbook implements the two-sided price-time priority order book:
// the price ladder, the matching algorithm, cancellation, and L2 snapshots.
package orderbook

import (
	"container/list"

	"github.com/shopspring/decimal"

	"github.com/lightningcore/matchcore/domain"
)

// PriceLevel holds all resting orders at one price on one side, in arrival
// order. Volume is a cached sum of remaining quantities, recomputed after
// every mutation of the level's membership or any member's remaining
// quantity — this is the spec's "cached sum correctness" invariant, kept
// exact rather than tracked by incremental add/sub to avoid any possibility
// of decimal drift across many fills.
type PriceLevel struct {
	Price  decimal.Decimal
	Orders *list.List // FIFO queue of *domain.Order, time priority
	Volume decimal.Decimal
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: list.New(),
		Volume: decimal.Zero,
	}
}

// append adds an order to the back of the level's FIFO queue, stores the
// resulting list.Element on the order for O(1) removal, and recomputes Volume.
func (pl *PriceLevel) append(o *domain.Order) {
	elem := pl.Orders.PushBack(o)
	o.SetListElement(elem)
	pl.RecomputeVolume()
}

// removeOrder removes a single order from the level's FIFO queue using its
// stored list.Element and recomputes Volume. Reports whether the level is now
// empty (the caller must then delete it from the Tree).
func (pl *PriceLevel) removeOrder(o *domain.Order) (empty bool) {
	if elem, ok := o.ListElement().(*list.Element); ok && elem != nil {
		pl.Orders.Remove(elem)
		o.SetListElement(nil)
	}
	pl.RecomputeVolume()
	return pl.Orders.Len() == 0
}

// front returns the earliest-arrived resting order at this level, or nil if
// the level is empty.
func (pl *PriceLevel) front() *domain.Order {
	e := pl.Orders.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*domain.Order)
}

// RecomputeVolume recomputes Volume from the member orders' current
// remaining quantities. Must be called after any fill applied to a member.
func (pl *PriceLevel) RecomputeVolume() {
	sum := decimal.Zero
	for e := pl.Orders.Front(); e != nil; e = e.Next() {
		sum = sum.Add(e.Value.(*domain.Order).Remaining())
	}
	pl.Volume = sum
}

// View returns the level's read-only (price, aggregate quantity) projection.
func (pl *PriceLevel) View() domain.PriceLevelView {
	return domain.PriceLevelView{Price: pl.Price, Quantity: pl.Volume}
}
