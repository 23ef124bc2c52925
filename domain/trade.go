package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable record of one match. Price always equals the resting
// (maker) order's price; quantity is bounded by both participants' remaining
// quantity at the instant of match.
type Trade struct {
	ID            string
	Seq           uint64 // monotonic per-symbol sequence, fixes emission order
	Symbol        string
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	AggressorSide Side
	MakerOrderID  string
	TakerOrderID  string
	MakerFee      decimal.Decimal
	TakerFee      decimal.Decimal
	MakerRate     decimal.Decimal
	TakerRate     decimal.Decimal
	Timestamp     time.Time
}

// TradeWire is the wire representation of a Trade (spec §6): aggressor_side
// serializes as the lowercase string "buy"/"sell".
type TradeWire struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	AggressorSide string          `json:"aggressor_side"`
	MakerOrderID  string          `json:"maker_order_id"`
	TakerOrderID  string          `json:"taker_order_id"`
	MakerFee      decimal.Decimal `json:"maker_fee"`
	TakerFee      decimal.Decimal `json:"taker_fee"`
	MakerRate     decimal.Decimal `json:"maker_rate"`
	TakerRate     decimal.Decimal `json:"taker_rate"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ToWire converts a Trade to its wire form.
func (t *Trade) ToWire() TradeWire {
	return TradeWire{
		ID:            t.ID,
		Symbol:        t.Symbol,
		Price:         t.Price,
		Quantity:      t.Quantity,
		AggressorSide: t.AggressorSide.String(),
		MakerOrderID:  t.MakerOrderID,
		TakerOrderID:  t.TakerOrderID,
		MakerFee:      t.MakerFee,
		TakerFee:      t.TakerFee,
		MakerRate:     t.MakerRate,
		TakerRate:     t.TakerRate,
		Timestamp:     t.Timestamp,
	}
}
