package emitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightningcore/matchcore/domain"
)

func TestPublishTrades_DeliversContiguousBatch(t *testing.T) {
	h := NewHub(16)
	sub := h.SubscribeTrades()

	batch := []*domain.Trade{
		{ID: "t1", Symbol: "BTC-USDT"},
		{ID: "t2", Symbol: "BTC-USDT"},
	}
	h.PublishTrades(batch)

	got := sub.Next()
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
}

func TestPublishBBO_FansOutToMultipleSubscribers(t *testing.T) {
	h := NewHub(16)
	a := h.SubscribeBBO()
	b := h.SubscribeBBO()

	h.PublishBBO(domain.BBO{Symbol: "BTC-USDT"})

	assert.Len(t, a.Next(), 1)
	assert.Len(t, b.Next(), 1)
}

func TestPublishWithNoSubscribers_DoesNotBlock(t *testing.T) {
	h := NewHub(16)
	done := make(chan struct{})
	go func() {
		h.PublishTrades([]*domain.Trade{{ID: "t1"}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishTrades blocked with no subscribers")
	}
}

func TestRing_OverwritesOldestWhenFull(t *testing.T) {
	h := NewHub(2)
	sub := h.SubscribeSnapshots()

	h.PublishSnapshot(domain.L2Snapshot{Symbol: "s1"})
	h.PublishSnapshot(domain.L2Snapshot{Symbol: "s2"})
	h.PublishSnapshot(domain.L2Snapshot{Symbol: "s3"})

	got := sub.TryNext()
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].Symbol)
	assert.Equal(t, "s3", got[1].Symbol)
}

func TestUnsubscribe_StopsFurtherDelivery(t *testing.T) {
	h := NewHub(16)
	sub := h.SubscribeTrades()
	h.Unsubscribe(sub.id)

	h.PublishTrades([]*domain.Trade{{ID: "t1"}})
	assert.Empty(t, sub.TryNext())
}
