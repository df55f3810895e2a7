package sector

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

type Highlights struct {
	TopGainers    []eventmodels.SectorRow `json:"top_gainers"`
	TopLosers     []eventmodels.SectorRow `json:"top_losers"`
	VolumeLeaders []eventmodels.SectorRow `json:"volume_leaders"`
	RScoreLeaders []eventmodels.SectorRow `json:"r_score_leaders"`
}

func NewHighlights(rows []eventmodels.SectorRow, n int) Highlights {
	scored := make([]eventmodels.SectorRow, 0, len(rows))
	for _, r := range rows {
		if r.IsScored() {
			scored = append(scored, r)
		}
	}

	return Highlights{
		TopGainers:    top(rows, n, func(a, b eventmodels.SectorRow) bool { return a.PercentChange > b.PercentChange }),
		TopLosers:     top(rows, n, func(a, b eventmodels.SectorRow) bool { return a.PercentChange < b.PercentChange }),
		VolumeLeaders: top(rows, n, func(a, b eventmodels.SectorRow) bool { return a.Volume > b.Volume }),
		RScoreLeaders: top(scored, n, func(a, b eventmodels.SectorRow) bool { return *a.RScore > *b.RScore }),
	}
}

// top keeps input order among equal rows.
func top[T any](rows []T, n int, less func(a, b T) bool) []T {
	out := append([]T{}, rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})

	if len(out) > n {
		out = out[:n]
	}

	return out
}

type BreadthStats struct {
	Advancing        int     `json:"advancing"`
	Declining        int     `json:"declining"`
	Unchanged        int     `json:"unchanged"`
	AdvancingPercent float64 `json:"advancing_percent"`
	DecliningPercent float64 `json:"declining_percent"`
	AverageGain      float64 `json:"average_gain"`
	AverageLoss      float64 `json:"average_loss"`
}

func Breadth(rows []eventmodels.SectorRow) BreadthStats {
	changes := make([]float64, 0, len(rows))
	for _, r := range rows {
		changes = append(changes, r.PercentChange)
	}

	return breadthOf(changes)
}

func IndexBreadth(perf []eventmodels.SectorIndexPerformance) BreadthStats {
	changes := make([]float64, 0, len(perf))
	for _, p := range perf {
		changes = append(changes, p.PercentChange)
	}

	return breadthOf(changes)
}

// breadthOf counts advancers and decliners. The averages are the mean gain
// of the advancers and the mean (negative) change of the decliners, 0 when
// there are none.
func breadthOf(changes []float64) BreadthStats {
	var out BreadthStats
	var gains, losses []float64
	for _, c := range changes {
		switch {
		case c > 0:
			out.Advancing++
			gains = append(gains, c)
		case c < 0:
			out.Declining++
			losses = append(losses, c)
		default:
			out.Unchanged++
		}
	}

	if len(changes) > 0 {
		out.AdvancingPercent = round2(float64(out.Advancing) / float64(len(changes)) * 100)
		out.DecliningPercent = round2(float64(out.Declining) / float64(len(changes)) * 100)
	}

	out.AverageGain = mean(gains)
	out.AverageLoss = mean(losses)

	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}

	return round2(m)
}

// IndexPerformance lists sector indices with a quote, best performer first.
func IndexPerformance(indices []eventmodels.SectorIndex, quotes map[string]eventmodels.Quote) []eventmodels.SectorIndexPerformance {
	out := make([]eventmodels.SectorIndexPerformance, 0, len(indices))
	for _, index := range indices {
		quote, found := quotes[eventmodels.InstrumentKey(index.InstrumentToken)]
		if !found {
			continue
		}

		out = append(out, eventmodels.SectorIndexPerformance{
			Name:            index.Name,
			InstrumentToken: index.InstrumentToken,
			LastPrice:       quote.LastPrice,
			PrevClose:       quote.OHLC.Close,
			PercentChange:   PercentChange(quote.LastPrice, quote.OHLC.Close),
		})
	}

	return top(out, len(out), func(a, b eventmodels.SectorIndexPerformance) bool {
		return a.PercentChange > b.PercentChange
	})
}

// MarketOverview measures each index against today's open, in input order.
// Indices without a quote are skipped.
func MarketOverview(indices []eventmodels.SectorIndex, quotes map[string]eventmodels.Quote) []eventmodels.MarketIndexQuote {
	out := make([]eventmodels.MarketIndexQuote, 0, len(indices))
	for _, index := range indices {
		quote, found := quotes[eventmodels.InstrumentKey(index.InstrumentToken)]
		if !found {
			continue
		}

		out = append(out, eventmodels.MarketIndexQuote{
			Name:            index.Name,
			InstrumentToken: index.InstrumentToken,
			LastPrice:       quote.LastPrice,
			Open:            quote.OHLC.Open,
			ChangeFromOpen:  PercentChange(quote.LastPrice, quote.OHLC.Open),
		})
	}

	return out
}
