package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateDraft_RequiresPriceForLimit(t *testing.T) {
	draft := OrderDraft{
		Symbol:   "BTC-USDT",
		Variant:  Limit,
		Side:     SideBuy,
		Quantity: dec("1"),
	}
	err := ValidateDraft(draft)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestValidateDraft_RequiresStopPriceForStopLoss(t *testing.T) {
	draft := OrderDraft{
		Symbol:   "BTC-USDT",
		Variant:  StopLoss,
		Side:     SideSell,
		Quantity: dec("1"),
	}
	assert.ErrorIs(t, ValidateDraft(draft), ErrInvalidOrder)
}

func TestValidateDraft_RejectsNonPositivePrice(t *testing.T) {
	price := dec("-1")
	draft := OrderDraft{
		Symbol:   "BTC-USDT",
		Variant:  Limit,
		Side:     SideBuy,
		Quantity: dec("1"),
		Price:    &price,
	}
	assert.ErrorIs(t, ValidateDraft(draft), ErrInvalidOrder)
}

func TestValidateDraft_MarketNeedsNoPrice(t *testing.T) {
	draft := OrderDraft{
		Symbol:   "BTC-USDT",
		Variant:  Market,
		Side:     SideBuy,
		Quantity: dec("1"),
	}
	assert.NoError(t, ValidateDraft(draft))
}

func TestOrder_FillTransitionsStatus(t *testing.T) {
	o := &Order{Quantity: dec("1.0"), Status: Open}
	o.Fill(dec("0.4"))
	assert.Equal(t, PartiallyFilled, o.Status)
	assert.True(t, dec("0.6").Equal(o.Remaining()))

	o.Fill(dec("0.6"))
	assert.Equal(t, Filled, o.Status)
	assert.True(t, o.IsFilled())
}
