package sector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

func TestNewHighlights(t *testing.T) {
	score := func(v float64) *float64 { return &v }
	rows := []eventmodels.SectorRow{
		{Symbol: "A", PercentChange: 2, Volume: 100, RScore: score(70)},
		{Symbol: "B", PercentChange: -3, Volume: 900},
		{Symbol: "C", PercentChange: 5, Volume: 300, RScore: score(20)},
		{Symbol: "D", PercentChange: -1, Volume: 300, RScore: score(95)},
	}

	h := NewHighlights(rows, 2)

	assert.Equal(t, []string{"C", "A"}, symbols(h.TopGainers))
	assert.Equal(t, []string{"B", "D"}, symbols(h.TopLosers))
	assert.Equal(t, []string{"B", "C"}, symbols(h.VolumeLeaders))
	assert.Equal(t, []string{"D", "A"}, symbols(h.RScoreLeaders))

	t.Run("fewer rows than n", func(t *testing.T) {
		h := NewHighlights(rows[:1], 3)
		assert.Len(t, h.TopGainers, 1)
	})
}

func TestBreadth(t *testing.T) {
	rows := []eventmodels.SectorRow{{PercentChange: 1}, {PercentChange: -2}, {PercentChange: 0}, {PercentChange: 3}}

	assert.Equal(t, BreadthStats{
		Advancing:        2,
		Declining:        1,
		Unchanged:        1,
		AdvancingPercent: 50,
		DecliningPercent: 25,
		AverageGain:      2,
		AverageLoss:      -2,
	}, Breadth(rows))
	assert.Equal(t, BreadthStats{}, Breadth(nil))

	t.Run("averages are rounded", func(t *testing.T) {
		b := Breadth([]eventmodels.SectorRow{{PercentChange: 1}, {PercentChange: 1.5}, {PercentChange: 2.25}, {PercentChange: -0.5}, {PercentChange: -1.25}})
		assert.Equal(t, 1.58, b.AverageGain)
		assert.Equal(t, -0.88, b.AverageLoss)
	})

	t.Run("no decliners gives zero average loss", func(t *testing.T) {
		b := Breadth([]eventmodels.SectorRow{{PercentChange: 3}, {PercentChange: 0}})
		assert.Equal(t, 3.0, b.AverageGain)
		assert.Equal(t, 0.0, b.AverageLoss)
	})
}

func TestIndexPerformance(t *testing.T) {
	indices := []eventmodels.SectorIndex{
		{InstrumentToken: 10, Name: "NIFTY IT"},
		{InstrumentToken: 11, Name: "NIFTY BANK"},
		{InstrumentToken: 12, Name: "NIFTY FMCG"},
	}

	perf := IndexPerformance(indices, quotesOf(quote(10, 101, 100, 0), quote(11, 104, 100, 0)))

	assert.Len(t, perf, 2)
	assert.Equal(t, "NIFTY BANK", perf[0].Name)
	assert.Equal(t, 4.0, perf[0].PercentChange)
	assert.Equal(t, "NIFTY IT", perf[1].Name)

	assert.Equal(t, 2, IndexBreadth(perf).Advancing)
}

func TestMarketOverview(t *testing.T) {
	quoteAtOpen := func(token uint32, last, open float64) eventmodels.Quote {
		return eventmodels.Quote{InstrumentToken: token, LastPrice: last, OHLC: eventmodels.QuoteOHLC{Open: open, Close: 1}}
	}

	overview := MarketOverview(eventmodels.DefaultMarketIndices, quotesOf(
		quoteAtOpen(256265, 24120, 24000),
		quoteAtOpen(264969, 13.2, 14),
	))

	require.Len(t, overview, 2)
	assert.Equal(t, "NIFTY 50", overview[0].Name)
	assert.Equal(t, 0.5, overview[0].ChangeFromOpen)
	assert.Equal(t, 24000.0, overview[0].Open)
	assert.Equal(t, "INDIA VIX", overview[1].Name)
	assert.Equal(t, -5.71, overview[1].ChangeFromOpen)

	t.Run("zero open gives zero change", func(t *testing.T) {
		overview := MarketOverview(eventmodels.DefaultMarketIndices[:1], quotesOf(quoteAtOpen(256265, 24120, 0)))
		require.Len(t, overview, 1)
		assert.Equal(t, 0.0, overview[0].ChangeFromOpen)
	})
}
