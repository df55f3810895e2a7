package run

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
)

type fakeFetcher struct {
	mu    sync.Mutex
	bars  map[uint32][]eventmodels.HistoricalBar
	fails map[uint32]error
	calls int
}

func (f *fakeFetcher) HistoricalDaily(ctx context.Context, member eventmodels.SectorMember, from, to eventmodels.TradingDay) ([]eventmodels.HistoricalBar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if err, found := f.fails[member.InstrumentToken]; found {
		return nil, err
	}

	return f.bars[member.InstrumentToken], nil
}

type fakeQuotes map[string]eventmodels.Quote

func (q fakeQuotes) Quote(ctx context.Context, instruments []string) (map[string]eventmodels.Quote, error) {
	out := make(map[string]eventmodels.Quote)
	for _, i := range instruments {
		if quote, found := q[i]; found {
			out[i] = quote
		}
	}

	return out, nil
}

func june(day int) eventmodels.TradingDay {
	return eventmodels.NewTradingDay(2024, time.June, day)
}

func bar(token uint32, symbol string, day int, close float64) eventmodels.HistoricalBar {
	return eventmodels.HistoricalBar{InstrumentToken: token, Symbol: symbol, Day: june(day), Open: close - 1, High: close + 1, Low: close - 2, Close: close, Volume: 1000}
}

var members = []eventmodels.SectorMember{
	{InstrumentToken: 1, Symbol: "AAA"},
	{InstrumentToken: 2, Symbol: "BBB"},
}

func fastRetry() eventservices.RetryPolicy {
	return eventservices.RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, MaxAttempts: 3}
}

func TestBackfill(t *testing.T) {
	fetcher := &fakeFetcher{
		bars: map[uint32][]eventmodels.HistoricalBar{
			1: {bar(1, "AAA", 3, 100), bar(1, "AAA", 4, 101)},
		},
		fails: map[uint32]error{
			2: &eventservices.HTTPStatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found"},
		},
	}

	bars, errs := Backfill(context.Background(), fetcher, members, june(1), june(4), rate.NewLimiter(rate.Inf, 1), fastRetry())

	assert.Len(t, bars, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, "BBB", errs[0].Symbol)
	assert.Equal(t, 2, fetcher.calls, "a 404 is not retried")
}

func TestLiveBars(t *testing.T) {
	quotes := fakeQuotes{
		"1": {InstrumentToken: 1, LastPrice: 105, Volume: 2500, OHLC: eventmodels.QuoteOHLC{Open: 102, High: 106, Low: 101, Close: 101}},
	}

	bars, errs := LiveBars(context.Background(), quotes, members, june(5))

	require.Len(t, bars, 1)
	assert.Equal(t, june(5), bars[0].Day)
	assert.Equal(t, 105.0, bars[0].Close)
	assert.Equal(t, 102.0, bars[0].Open)
	assert.Equal(t, "AAA", bars[0].Symbol)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], eventmodels.QuoteNotFoundErr)
}

func TestRollHistory(t *testing.T) {
	store := eventservices.NewHistoryStore(filepath.Join(t.TempDir(), "history.csv"))
	require.NoError(t, store.Save([]eventmodels.HistoricalBar{
		bar(1, "AAA", 3, 100), bar(1, "AAA", 4, 101),
		bar(2, "BBB", 3, 50), bar(2, "BBB", 4, 51),
	}))

	quotes := fakeQuotes{
		"1": {InstrumentToken: 1, LastPrice: 105, Volume: 2500, OHLC: eventmodels.QuoteOHLC{Open: 102, High: 106, Low: 101, Close: 101}},
		"2": {InstrumentToken: 2, LastPrice: 52, Volume: 900, OHLC: eventmodels.QuoteOHLC{Open: 51, High: 53, Low: 50, Close: 51}},
	}

	t.Run("drops the oldest day", func(t *testing.T) {
		n, errs, err := RollHistory(context.Background(), store, quotes, members, june(5))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Empty(t, errs)

		bars, err := store.Load()
		require.NoError(t, err)
		require.Len(t, bars, 4)

		for _, b := range bars {
			assert.NotEqual(t, june(3), b.Day)
		}
	})

	t.Run("no quotes", func(t *testing.T) {
		_, errs, err := RollHistory(context.Background(), store, fakeQuotes{}, members, june(6))
		assert.Error(t, err)
		assert.Len(t, errs, 2)
	})
}
