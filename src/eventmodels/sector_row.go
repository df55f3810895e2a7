package eventmodels

import "time"

// SectorRow is one member of a sector table. The score columns are nil when
// the member had too little history to be scored.
type SectorRow struct {
	Symbol          string    `json:"symbol"`
	InstrumentToken uint32    `json:"instrument_token"`
	LastPrice       float64   `json:"last_price"`
	PrevClose       float64   `json:"prev_close"`
	PercentChange   float64   `json:"percent_change"`
	Volume          float64   `json:"volume"`
	OI              float64   `json:"oi"`
	RScore          *float64  `json:"r_score"`
	ZVolume         *float64  `json:"z_volume"`
	ZTurnover       *float64  `json:"z_turnover"`
	ZReturn         *float64  `json:"z_return"`
	RSignal         string    `json:"r_signal"`
	LastTradeTime   time.Time `json:"last_trade_time"`
}

func (r SectorRow) IsScored() bool {
	return r.RScore != nil
}

type SectorIndexPerformance struct {
	Name            string  `json:"name"`
	InstrumentToken uint32  `json:"instrument_token"`
	LastPrice       float64 `json:"last_price"`
	PrevClose       float64 `json:"prev_close"`
	PercentChange   float64 `json:"percent_change"`
}

// MarketIndexQuote is a headline index measured against the session open
// rather than the previous close.
type MarketIndexQuote struct {
	Name            string  `json:"name"`
	InstrumentToken uint32  `json:"instrument_token"`
	LastPrice       float64 `json:"last_price"`
	Open            float64 `json:"open"`
	ChangeFromOpen  float64 `json:"change_from_open"`
}
