package eventmodels

// LiveBar is today's partial bar built from a real time quote.
type LiveBar HistoricalBar

// NewLiveBar takes open, high and low from the quote's OHLC, the last
// traded price as close and the day's volume.
func NewLiveBar(symbol string, quote Quote, today TradingDay) LiveBar {
	return LiveBar{
		InstrumentToken: quote.InstrumentToken,
		Day:             today,
		Open:            quote.OHLC.Open,
		High:            quote.OHLC.High,
		Low:             quote.OHLC.Low,
		Close:           quote.LastPrice,
		Volume:          quote.Volume,
		Symbol:          symbol,
	}
}

func (b LiveBar) ToHistoricalBar() HistoricalBar {
	return HistoricalBar(b)
}
