package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightningcore/matchcore/fees"
)

func TestRegistry_GetIsIdempotentPerSymbol(t *testing.T) {
	r := NewRegistry(fees.NewEngine(decimal.Zero, decimal.Zero))
	t.Cleanup(func() { _ = r.Close() })

	a := r.Get("BTC-USDT")
	b := r.Get("BTC-USDT")
	assert.Same(t, a, b)

	c := r.Get("ETH-USDT")
	assert.NotSame(t, a, c)
	assert.ElementsMatch(t, []string{"BTC-USDT", "ETH-USDT"}, r.Symbols())
}

func TestRegistry_SymbolsShareOneFeeEngine(t *testing.T) {
	ctx := context.Background()
	shared := fees.NewEngine(decimal.Zero, decimal.Zero)
	r := NewRegistry(shared)
	t.Cleanup(func() { _ = r.Close() })

	btc := r.Get("BTC-USDT")
	err := btc.SetDefaultRates(ctx, decimal.NewFromFloat(0.001), decimal.NewFromFloat(0.002))
	require.NoError(t, err)

	eth := r.Get("ETH-USDT")
	sched := eth.GetFeeSchedule(ctx)
	require.True(t, decimal.NewFromFloat(0.001).Equal(sched.MakerRate))
}
