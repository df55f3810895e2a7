package eventmodels

import "fmt"

// CompositeSeries is stored history for one instrument with the live bar
// appended. Bars are sorted by day with at most one bar per day, so the last
// element is the most recent day.
type CompositeSeries struct {
	InstrumentToken uint32
	Bars            []HistoricalBar
}

// NewCompositeSeries merges history and an optional live bar. A stored bar
// for the live bar's day is replaced by the live bar. Bars belonging to
// another instrument are rejected.
func NewCompositeSeries(token uint32, history []HistoricalBar, live *LiveBar) (CompositeSeries, error) {
	byDay := make(map[TradingDay]HistoricalBar, len(history)+1)
	for _, b := range history {
		if b.InstrumentToken != token {
			return CompositeSeries{}, fmt.Errorf("NewCompositeSeries: bar for token %d in series %d", b.InstrumentToken, token)
		}

		byDay[b.Day] = b
	}

	if live != nil {
		if live.InstrumentToken != token {
			return CompositeSeries{}, fmt.Errorf("NewCompositeSeries: live bar for token %d in series %d", live.InstrumentToken, token)
		}

		byDay[live.Day] = live.ToHistoricalBar()
	}

	bars := make([]HistoricalBar, 0, len(byDay))
	for _, b := range byDay {
		bars = append(bars, b)
	}

	SortBars(bars)

	return CompositeSeries{InstrumentToken: token, Bars: bars}, nil
}

func (s CompositeSeries) Latest() (HistoricalBar, bool) {
	if len(s.Bars) == 0 {
		return HistoricalBar{}, false
	}

	return s.Bars[len(s.Bars)-1], true
}
