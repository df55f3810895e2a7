package eventmodels

import "sort"

// HistoricalBar is one daily bar. The csv tags match the history file
// layout: instrument_token,date,open,high,low,close,volume,symbol.
type HistoricalBar struct {
	InstrumentToken uint32     `csv:"instrument_token" json:"instrument_token"`
	Day             TradingDay `csv:"date" json:"date"`
	Open            float64    `csv:"open" json:"open"`
	High            float64    `csv:"high" json:"high"`
	Low             float64    `csv:"low" json:"low"`
	Close           float64    `csv:"close" json:"close"`
	Volume          float64    `csv:"volume" json:"volume"`
	Symbol          string     `csv:"symbol" json:"symbol"`
}

func (b HistoricalBar) Turnover() float64 {
	return b.Close * b.Volume
}

// Return is the intraday return (close - open) / open.
func (b HistoricalBar) Return() float64 {
	return (b.Close - b.Open) / b.Open
}

// SortBars orders bars by instrument token and then day.
func SortBars(bars []HistoricalBar) {
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].InstrumentToken != bars[j].InstrumentToken {
			return bars[i].InstrumentToken < bars[j].InstrumentToken
		}

		return bars[i].Day.Compare(bars[j].Day) < 0
	})
}

// GroupBarsByToken splits bars per instrument, each group sorted by day.
func GroupBarsByToken(bars []HistoricalBar) map[uint32][]HistoricalBar {
	out := make(map[uint32][]HistoricalBar)
	for _, b := range bars {
		out[b.InstrumentToken] = append(out[b.InstrumentToken], b)
	}

	for token := range out {
		SortBars(out[token])
	}

	return out
}
