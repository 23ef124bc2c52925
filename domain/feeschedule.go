package domain

import "github.com/shopspring/decimal"

// FeeSchedule is a per-symbol maker/taker rate pair. A process-wide default
// pair applies to any symbol with no explicit schedule.
type FeeSchedule struct {
	Symbol    string
	MakerRate decimal.Decimal
	TakerRate decimal.Decimal
}

// Valid reports whether both rates are non-negative, per the spec's
// InvalidRate rule (negative rates are rejected at set time).
func (f FeeSchedule) Valid() bool {
	return f.MakerRate.Sign() >= 0 && f.TakerRate.Sign() >= 0
}
