package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightningcore/matchcore/domain"
	"github.com/lightningcore/matchcore/fees"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testSymbol(t *testing.T) *Symbol {
	t.Helper()
	s := NewSymbol("BTC-USDT", fees.NewEngine(decimal.Zero, decimal.Zero))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func limitDraft(side domain.Side, price, qty string) domain.OrderDraft {
	p := dec(price)
	return domain.OrderDraft{Symbol: "BTC-USDT", Variant: domain.Limit, Side: side, Quantity: dec(qty), Price: &p}
}

func marketDraft(side domain.Side, qty string) domain.OrderDraft {
	return domain.OrderDraft{Symbol: "BTC-USDT", Variant: domain.Market, Side: side, Quantity: dec(qty)}
}

func stopLossDraft(side domain.Side, stop, qty string) domain.OrderDraft {
	sp := dec(stop)
	return domain.OrderDraft{Symbol: "BTC-USDT", Variant: domain.StopLoss, Side: side, Quantity: dec(qty), StopPrice: &sp}
}

// S5 — stop-loss activation.
func TestS5_StopLossActivation(t *testing.T) {
	ctx := context.Background()
	s := testSymbol(t)

	_, _, err := s.Submit(ctx, limitDraft(domain.SideBuy, "50000", "1.0"))
	require.NoError(t, err)

	slOrder, trades, err := s.Submit(ctx, stopLossDraft(domain.SideSell, "49000", "0.5"))
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, domain.PendingTrigger, slOrder.Status)

	_, trades, err = s.Submit(ctx, marketDraft(domain.SideSell, "1.0"))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.True(t, dec("50000").Equal(trades[0].Price))

	pending, err := s.Lookup(ctx, slOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PendingTrigger, pending.Status, "50000 must not trigger a 49000 sell stop")

	_, _, err = s.Submit(ctx, limitDraft(domain.SideBuy, "48000", "1.0"))
	require.NoError(t, err)

	_, trades, err = s.Submit(ctx, marketDraft(domain.SideSell, "0.5"))
	require.NoError(t, err)
	require.Len(t, trades, 1, "the triggering trade itself")

	_, err = s.Lookup(ctx, slOrder.ID)
	require.ErrorIs(t, err, domain.ErrNotFound, "a filled order is neither resting nor pending, so Lookup no longer finds it")
	triggered := slOrder
	assert.Equal(t, domain.Filled, triggered.Status)
	assert.True(t, dec("0.5").Equal(triggered.Filled))
	assert.Equal(t, domain.Market, triggered.Variant, "promoted stop-loss rewrites to MARKET")
	last := s.RecentTrades(ctx, 1)
	require.Len(t, last, 1)
	assert.Equal(t, slOrder.ID, last[0].TakerOrderID)
	assert.True(t, dec("48000").Equal(last[0].Price), "promoted stop-loss executes at the triggering price level")
}

func TestSubmit_RejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	s := testSymbol(t)

	order, trades, err := s.Submit(ctx, domain.OrderDraft{Symbol: "BTC-USDT", Variant: domain.Limit, Side: domain.SideBuy, Quantity: dec("1.0")})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	assert.Empty(t, trades)
	assert.Equal(t, domain.Rejected, order.Status)
}

func TestSubmit_TriggeredReSubmissionCompletesBeforeReturn(t *testing.T) {
	ctx := context.Background()
	s := testSymbol(t)

	_, _, err := s.Submit(ctx, limitDraft(domain.SideBuy, "100", "1.0"))
	require.NoError(t, err)
	_, _, err = s.Submit(ctx, stopLossDraft(domain.SideSell, "100", "1.0"))
	require.NoError(t, err)

	_, trades, err := s.Submit(ctx, marketDraft(domain.SideSell, "0.0001"))
	require.NoError(t, err)
	_ = trades

	bbo := s.BBO(ctx)
	assert.Nil(t, bbo.Bid, "by the time Submit returns, the promoted stop-loss must already have consumed the remaining bid")
}

func TestCancel_RemovesPendingTriggerOrder(t *testing.T) {
	ctx := context.Background()
	s := testSymbol(t)

	order, _, err := s.Submit(ctx, stopLossDraft(domain.SideSell, "49000", "0.5"))
	require.NoError(t, err)

	canceled, err := s.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Canceled, canceled.Status)

	_, err = s.Lookup(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetFeeSchedule_AppliesToSubsequentTrades(t *testing.T) {
	ctx := context.Background()
	s := testSymbol(t)

	_, err := s.SetFeeSchedule(ctx, dec("0.002"), dec("0.003"))
	require.NoError(t, err)

	_, _, err = s.Submit(ctx, limitDraft(domain.SideSell, "50000", "1.0"))
	require.NoError(t, err)
	_, trades, err := s.Submit(ctx, marketDraft(domain.SideBuy, "1.0"))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.True(t, dec("100.0").Equal(trades[0].MakerFee))
	assert.True(t, dec("150.0").Equal(trades[0].TakerFee))
}
