package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevelView is one (price, aggregate quantity) pair in an L2 snapshot or
// a BBO side. It carries no per-order identity.
type PriceLevelView struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// BBO is the best bid and offer for a symbol. Bid/Ask are nil when
// that side of the book is empty.
type BBO struct {
	Symbol    string
	Bid       *PriceLevelView
	Ask       *PriceLevelView
	Timestamp time.Time
}

// L2Snapshot is the aggregated depth view of a book to a requested depth.
// Bids are ordered descending by price, asks ascending; neither slice
// contains duplicate prices or zero-quantity levels.
type L2Snapshot struct {
	Symbol    string           `json:"symbol"`
	Timestamp time.Time        `json:"timestamp"`
	Bids      []PriceLevelView `json:"bids"`
	Asks      []PriceLevelView `json:"asks"`
}
