package eventconsumers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/trade-analyst/src/data"
	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventpubsub"
	"github.com/jiaming2012/trade-analyst/src/liquidation"
	"github.com/jiaming2012/trade-analyst/src/optionchain"
)

func side(oi, change, buy, sell, underlying float64) eventmodels.OptionSide {
	return eventmodels.OptionSide{
		Listed:               true,
		OpenInterest:         oi,
		ChangeInOpenInterest: change,
		TotalBuyQuantity:     buy,
		TotalSellQuantity:    sell,
		UnderlyingValue:      underlying,
		BidPrice:             10,
		AskPrice:             11,
	}
}

func TestOptionChainConsumer(t *testing.T) {
	eventpubsub.Init()

	store := data.NewAnalysisStore()
	consumer := NewOptionChainConsumer(store, optionchain.DefaultConfig(), liquidation.DefaultThresholds(), 4)
	require.NoError(t, consumer.Start())

	var mu sync.Mutex
	var updates []*data.AnalysisEntry
	require.NoError(t, eventpubsub.Subscribe(eventpubsub.OptionAnalysisUpdated, func(entry *data.AnalysisEntry) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, entry)
	}))

	expiry := eventmodels.NewTradingDay(2024, time.December, 26)
	snapshot := eventmodels.NewOptionChainSnapshot("NIFTY", time.Now(), []eventmodels.OptionChainRow{
		{StrikePrice: 24000, ExpiryDate: expiry, Call: side(5000, 100, 10, 10, 24010), Put: side(8000, 300, 10, 10, 24010)},
		{StrikePrice: 25000, ExpiryDate: expiry, Call: side(25000, -3000, 1200, 800, 24010), Put: side(100, 0, 1, 1, 24010)},
	})

	eventpubsub.Publish(eventpubsub.OptionChainSnapshotEvent, &eventmodels.OptionChainSnapshotEvent{
		Ctx:      context.Background(),
		Snapshot: snapshot,
	})

	eventpubsub.Wait()

	entry, found := store.Get("NIFTY")
	require.True(t, found)

	require.NotNil(t, entry.Analysis)
	assert.Empty(t, entry.AnalysisError)
	assert.Equal(t, 24010.0, entry.Analysis.Underlying)
	assert.Equal(t, snapshot.ID, entry.AnalysisID)

	require.Len(t, entry.Signals, 1)
	assert.Equal(t, eventmodels.LiquidationSignalCE, entry.Signals[0].Type)
	assert.Equal(t, 25000.0, entry.Signals[0].Strike)
	assert.Equal(t, snapshot.ID, entry.SignalsID)

	mu.Lock()
	assert.Len(t, updates, 2)
	mu.Unlock()
}
