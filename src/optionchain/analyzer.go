package optionchain

import (
	"fmt"
	"sort"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

// Analyze filters the snapshot to traded strikes around the underlying and
// ranks them. Rows are processed in (strike, expiry) order, so every "first
// occurrence" tie-break picks the lowest strike and then the nearest expiry.
//
// Only a missing underlying value fails. A snapshot with nothing inside the
// range yields empty tables, zero levels and a +Inf PCR.
func Analyze(snapshot *eventmodels.OptionChainSnapshot, cfg Config) (*Analysis, error) {
	rows := snapshot.CopyRows()
	eventmodels.SortOptionChainRows(rows)

	var traded []eventmodels.OptionChainRow
	for _, row := range rows {
		if row.IsTraded() {
			traded = append(traded, row)
		}
	}

	underlying, err := findUnderlying(traded)
	if err != nil {
		return nil, fmt.Errorf("Analyze: %w", err)
	}

	lower, upper := underlying-cfg.RangeWidth, underlying+cfg.RangeWidth

	var filtered []AnalyzedStrike
	for _, row := range traded {
		if row.StrikePrice >= lower && row.StrikePrice <= upper {
			filtered = append(filtered, newAnalyzedStrike(row))
		}
	}

	analysis := &Analysis{
		Underlying: underlying,
		PCR:        putCallRatio(filtered),
	}
	analysis.Sentiment = analysis.PCR.Sentiment()

	if snapshot != nil {
		analysis.Symbol = snapshot.Symbol
	}

	var latest []AnalyzedStrike
	if len(filtered) > 0 {
		analysis.LatestExpiry = nearestExpiry(filtered)
		for _, s := range filtered {
			if s.ExpiryDate.Equal(analysis.LatestExpiry) {
				latest = append(latest, s)
			}
		}
	}

	analysis.Overall = newView(filtered, cfg.TopN)
	analysis.Latest = newView(latest, cfg.TopN)

	analysis.LiquidCalls = topBy(filtered, cfg.TopN,
		func(s AnalyzedStrike) bool { return s.Call.Listed && s.CallSpread < cfg.MaxSpread },
		func(s AnalyzedStrike) float64 { return s.Call.TotalTradedVolume })

	analysis.LiquidPuts = topBy(filtered, cfg.TopN,
		func(s AnalyzedStrike) bool { return s.Put.Listed && s.PutSpread < cfg.MaxSpread },
		func(s AnalyzedStrike) float64 { return s.Put.TotalTradedVolume })

	return analysis, nil
}

func findUnderlying(rows []eventmodels.OptionChainRow) (float64, error) {
	for _, row := range rows {
		if row.Call.Listed && row.Call.UnderlyingValue != 0 {
			return row.Call.UnderlyingValue, nil
		}
	}

	return 0, eventmodels.NewDataError("CE.underlyingValue", -1, eventmodels.NoUnderlyingValueErr)
}

func nearestExpiry(rows []AnalyzedStrike) eventmodels.TradingDay {
	nearest := rows[0].ExpiryDate
	for _, s := range rows[1:] {
		if s.ExpiryDate.Compare(nearest) < 0 {
			nearest = s.ExpiryDate
		}
	}

	return nearest
}

func newView(rows []AnalyzedStrike, topN int) View {
	putListed := func(s AnalyzedStrike) bool { return s.Put.Listed }
	callListed := func(s AnalyzedStrike) bool { return s.Call.Listed }
	bothListed := func(s AnalyzedStrike) bool { return s.Call.Listed && s.Put.Listed }

	if rows == nil {
		rows = []AnalyzedStrike{}
	}

	return View{
		Rows: rows,
		Levels: Levels{
			Support:    strikeOfMax(rows, putListed, func(s AnalyzedStrike) float64 { return s.Put.OpenInterest }),
			Resistance: strikeOfMax(rows, callListed, func(s AnalyzedStrike) float64 { return s.Call.OpenInterest }),
		},
		TopPutOIChange:  topBy(rows, topN, putListed, func(s AnalyzedStrike) float64 { return s.PutOIChangePercent }),
		TopCallOIChange: topBy(rows, topN, callListed, func(s AnalyzedStrike) float64 { return s.CallOIChangePercent }),
		TopIVSkew:       topBy(rows, topN, bothListed, func(s AnalyzedStrike) float64 { return s.IVSkew }),
	}
}

// strikeOfMax keeps the first row holding the maximum.
func strikeOfMax(rows []AnalyzedStrike, include func(AnalyzedStrike) bool, key func(AnalyzedStrike) float64) float64 {
	found := false
	var best AnalyzedStrike
	for _, s := range rows {
		if !include(s) {
			continue
		}

		if !found || key(s) > key(best) {
			best = s
			found = true
		}
	}

	if !found {
		return 0
	}

	return best.StrikePrice
}

// topBy sorts descending by key, keeping row order among equal keys.
func topBy(rows []AnalyzedStrike, n int, include func(AnalyzedStrike) bool, key func(AnalyzedStrike) float64) []AnalyzedStrike {
	candidates := make([]AnalyzedStrike, 0, len(rows))
	for _, s := range rows {
		if include(s) {
			candidates = append(candidates, s)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return key(candidates[i]) > key(candidates[j])
	})

	if n >= 0 && len(candidates) > n {
		candidates = candidates[:n]
	}

	return candidates
}

func putCallRatio(rows []AnalyzedStrike) eventmodels.PutCallRatio {
	var putOI, callOI float64
	for _, s := range rows {
		putOI += s.Put.OpenInterest
		callOI += s.Call.OpenInterest
	}

	return eventmodels.NewPutCallRatio(putOI, callOI)
}
