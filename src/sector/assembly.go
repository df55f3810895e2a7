package sector

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/rscore"
)

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func roundPtr(v float64) *float64 {
	r := round2(v)
	return &r
}

// PercentChange is 0 when there is no previous close.
func PercentChange(last, prevClose float64) float64 {
	if prevClose == 0 {
		return 0
	}

	return round2((last - prevClose) / prevClose * 100)
}

// BuildRows joins each member's live quote with its score, in member order.
// Members without a quote are skipped; the caller reports them. Scores and
// percent changes are rounded to 2 decimals and the signal is banded on the
// rounded score.
func BuildRows(members []eventmodels.SectorMember, quotes map[string]eventmodels.Quote, scores []eventmodels.RScoreRecord) []eventmodels.SectorRow {
	byToken := make(map[uint32]eventmodels.RScoreRecord, len(scores))
	for _, s := range scores {
		byToken[s.InstrumentToken] = s
	}

	rows := make([]eventmodels.SectorRow, 0, len(members))
	for _, member := range members {
		quote, found := quotes[eventmodels.InstrumentKey(member.InstrumentToken)]
		if !found {
			continue
		}

		row := eventmodels.SectorRow{
			Symbol:          member.Symbol,
			InstrumentToken: member.InstrumentToken,
			LastPrice:       quote.LastPrice,
			PrevClose:       quote.OHLC.Close,
			PercentChange:   PercentChange(quote.LastPrice, quote.OHLC.Close),
			Volume:          quote.Volume,
			OI:              quote.OI,
			LastTradeTime:   quote.LastTradeTime,
		}

		if score, found := byToken[member.InstrumentToken]; found {
			row.RScore = roundPtr(score.RScore)
			row.ZVolume = roundPtr(score.ZVolume)
			row.ZTurnover = roundPtr(score.ZTurnover)
			row.ZReturn = roundPtr(score.ZReturn)
		}

		row.RSignal = rscore.SignalFor(row.RScore)

		rows = append(rows, row)
	}

	return rows
}

// Rank orders rows by R-Score, highest first. Unscored rows follow the
// scored ones, by symbol, unless dropUnscored removes them.
func Rank(rows []eventmodels.SectorRow, dropUnscored bool) []eventmodels.SectorRow {
	out := make([]eventmodels.SectorRow, 0, len(rows))
	for _, r := range rows {
		if dropUnscored && !r.IsScored() {
			continue
		}

		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.IsScored() && b.IsScored():
			return *a.RScore > *b.RScore
		case a.IsScored() != b.IsScored():
			return a.IsScored()
		default:
			return a.Symbol < b.Symbol
		}
	})

	return out
}
