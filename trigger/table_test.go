package trigger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightningcore/matchcore/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEvaluate_StopLossBuyTriggersAtOrAbove(t *testing.T) {
	tbl := New()
	o := &domain.Order{ID: "SL1", Variant: domain.StopLoss, Side: domain.SideBuy, StopPrice: dec("49000"), Status: domain.PendingTrigger}
	tbl.Insert(o)

	assert.Empty(t, tbl.Evaluate(dec("48999")))
	assert.Equal(t, 1, tbl.Len())

	promoted := tbl.Evaluate(dec("49000"))
	require.Len(t, promoted, 1)
	assert.Equal(t, domain.Market, promoted[0].Variant)
	assert.Equal(t, domain.Open, promoted[0].Status)
	assert.Equal(t, 0, tbl.Len())
}

func TestEvaluate_StopLossSellTriggersAtOrBelow(t *testing.T) {
	tbl := New()
	o := &domain.Order{ID: "SL2", Variant: domain.StopLoss, Side: domain.SideSell, StopPrice: dec("49000"), Status: domain.PendingTrigger}
	tbl.Insert(o)

	assert.Empty(t, tbl.Evaluate(dec("49001")))
	promoted := tbl.Evaluate(dec("49000"))
	require.Len(t, promoted, 1)
	assert.Equal(t, domain.Market, promoted[0].Variant)
}

func TestEvaluate_TakeProfitInvertsDirection(t *testing.T) {
	tbl := New()
	buyTP := &domain.Order{ID: "TP-buy", Variant: domain.TakeProfit, Side: domain.SideBuy, StopPrice: dec("49000"), Status: domain.PendingTrigger}
	sellTP := &domain.Order{ID: "TP-sell", Variant: domain.TakeProfit, Side: domain.SideSell, StopPrice: dec("49000"), Status: domain.PendingTrigger}
	tbl.Insert(buyTP)
	tbl.Insert(sellTP)

	promoted := tbl.Evaluate(dec("49000"))
	require.Len(t, promoted, 2)
}

func TestEvaluate_StopLimitPromotesToLimitAtPostTriggerPrice(t *testing.T) {
	tbl := New()
	limit := dec("48500")
	o := &domain.Order{
		ID: "SLim1", Variant: domain.StopLimit, Side: domain.SideSell,
		StopPrice: dec("49000"), PostTriggerLimitPrice: limit, Status: domain.PendingTrigger,
	}
	tbl.Insert(o)

	promoted := tbl.Evaluate(dec("48000"))
	require.Len(t, promoted, 1)
	assert.Equal(t, domain.Limit, promoted[0].Variant)
	assert.True(t, limit.Equal(promoted[0].Price))
}

func TestEvaluate_EachOrderPromotedAtMostOnce(t *testing.T) {
	tbl := New()
	o := &domain.Order{ID: "SL1", Variant: domain.StopLoss, Side: domain.SideBuy, StopPrice: dec("49000"), Status: domain.PendingTrigger}
	tbl.Insert(o)

	first := tbl.Evaluate(dec("50000"))
	require.Len(t, first, 1)

	// Re-inserting a promoted MARKET order directly would be a caller bug;
	// the table itself must not re-surface the same id from a stale pass.
	second := tbl.Evaluate(dec("50000"))
	assert.Empty(t, second)
}

func TestCancelRemovesFromTable(t *testing.T) {
	tbl := New()
	o := &domain.Order{ID: "SL1", Variant: domain.StopLoss, Side: domain.SideBuy, StopPrice: dec("49000"), Status: domain.PendingTrigger}
	tbl.Insert(o)

	canceled, err := tbl.Cancel("SL1")
	require.NoError(t, err)
	assert.Equal(t, domain.Canceled, canceled.Status)

	_, err = tbl.Cancel("SL1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
