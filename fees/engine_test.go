package fees

import (
	"testing"
	"time"

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

// S6 — fee attachment.
func TestS6_FeeAttachment(t *testing.T) {
	e := NewEngine(decimal.Zero, decimal.Zero)
	_, err := e.SetSchedule("BTC-USDT", dec("0.002"), dec("0.003"))
	require.NoError(t, err)

	trade := &domain.Trade{
		Symbol: "BTC-USDT", Price: dec("50000"), Quantity: dec("1.0"), Timestamp: time.Now(),
	}
	e.Apply(trade)

	assert.True(t, dec("100.0").Equal(trade.MakerFee))
	assert.True(t, dec("150.0").Equal(trade.TakerFee))
	assert.True(t, dec("0.002").Equal(trade.MakerRate))
	assert.True(t, dec("0.003").Equal(trade.TakerRate))
}

func TestQuote_LazilyClonesDefaultWithoutMutatingIt(t *testing.T) {
	e := NewEngine(dec("0.001"), dec("0.002"))
	sched := e.Quote("ETH-USDT")
	assert.True(t, dec("0.001").Equal(sched.MakerRate))

	_, err := e.SetSchedule("ETH-USDT", dec("0.01"), dec("0.02"))
	require.NoError(t, err)

	other := e.Quote("SOL-USDT")
	assert.True(t, dec("0.001").Equal(other.MakerRate), "default must be unaffected by another symbol's override")
}

func TestSetSchedule_RejectsNegativeRate(t *testing.T) {
	e := NewEngine(decimal.Zero, decimal.Zero)
	_, err := e.SetSchedule("BTC-USDT", dec("-0.001"), dec("0.002"))
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestSetDefaultRates_RejectsNegativeRate(t *testing.T) {
	e := NewEngine(decimal.Zero, decimal.Zero)
	err := e.SetDefaultRates(dec("0.001"), dec("-0.002"))
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestApply_ScheduleChangeOnlyAffectsSubsequentTrades(t *testing.T) {
	e := NewEngine(decimal.Zero, decimal.Zero)
	_, err := e.SetSchedule("BTC-USDT", dec("0.001"), dec("0.001"))
	require.NoError(t, err)

	first := &domain.Trade{Symbol: "BTC-USDT", Price: dec("100"), Quantity: dec("1")}
	e.Apply(first)

	_, err = e.SetSchedule("BTC-USDT", dec("0.01"), dec("0.01"))
	require.NoError(t, err)

	assert.True(t, dec("0.1").Equal(first.MakerFee), "already-emitted trade must not be retroactively repriced")

	second := &domain.Trade{Symbol: "BTC-USDT", Price: dec("100"), Quantity: dec("1")}
	e.Apply(second)
	assert.True(t, dec("1").Equal(second.MakerFee))
}
