package eventmodels

import (
	"context"
	"strconv"
	"time"
)

type QuoteOHLC struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Quote is a normalized brokerage quote. OHLC.Close is the previous
// session's close.
type Quote struct {
	InstrumentToken uint32    `json:"instrument_token"`
	LastPrice       float64   `json:"last_price"`
	Volume          float64   `json:"volume"`
	OI              float64   `json:"oi"`
	NetChange       float64   `json:"net_change"`
	OHLC            QuoteOHLC `json:"ohlc"`
	LastTradeTime   time.Time `json:"last_trade_time"`
}

// QuoteProvider is the brokerage session handed to whatever needs live
// quotes. Instruments are keyed by InstrumentKey.
type QuoteProvider interface {
	Quote(ctx context.Context, instruments []string) (map[string]Quote, error)
}

func InstrumentKey(token uint32) string {
	return strconv.FormatUint(uint64(token), 10)
}
