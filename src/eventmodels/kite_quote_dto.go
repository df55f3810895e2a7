package eventmodels

import (
	"fmt"
	"time"
)

const KiteTimeLayout = "2006-01-02 15:04:05"

type KiteOHLCDTO struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type KiteQuoteDTO struct {
	InstrumentToken uint32      `json:"instrument_token"`
	Timestamp       string      `json:"timestamp"`
	LastTradeTime   string      `json:"last_trade_time"`
	LastPrice       float64     `json:"last_price"`
	Volume          float64     `json:"volume"`
	OI              float64     `json:"oi"`
	NetChange       float64     `json:"net_change"`
	OHLC            KiteOHLCDTO `json:"ohlc"`
}

func (dto *KiteQuoteDTO) ToQuote() (Quote, error) {
	var lastTradeTime time.Time
	if dto.LastTradeTime != "" {
		t, err := time.Parse(KiteTimeLayout, dto.LastTradeTime)
		if err != nil {
			return Quote{}, fmt.Errorf("KiteQuoteDTO.ToQuote: last_trade_time: %w", err)
		}

		lastTradeTime = t
	}

	return Quote{
		InstrumentToken: dto.InstrumentToken,
		LastPrice:       dto.LastPrice,
		Volume:          dto.Volume,
		OI:              dto.OI,
		NetChange:       dto.NetChange,
		OHLC: QuoteOHLC{
			Open:  dto.OHLC.Open,
			High:  dto.OHLC.High,
			Low:   dto.OHLC.Low,
			Close: dto.OHLC.Close,
		},
		LastTradeTime: lastTradeTime,
	}, nil
}

type KiteQuoteResponseDTO struct {
	Status    string                  `json:"status"`
	Message   string                  `json:"message"`
	ErrorType string                  `json:"error_type"`
	Data      map[string]KiteQuoteDTO `json:"data"`
}

type KiteHistoricalDataDTO struct {
	Candles [][]interface{} `json:"candles"`
}

type KiteHistoricalResponseDTO struct {
	Status    string                `json:"status"`
	Message   string                `json:"message"`
	ErrorType string                `json:"error_type"`
	Data      KiteHistoricalDataDTO `json:"data"`
}

// ToHistoricalBars converts [timestamp, open, high, low, close, volume]
// candles. The timestamp offset is dropped and the wall clock date kept.
func (dto *KiteHistoricalResponseDTO) ToHistoricalBars(token uint32, symbol string) ([]HistoricalBar, error) {
	bars := make([]HistoricalBar, 0, len(dto.Data.Candles))
	for i, candle := range dto.Data.Candles {
		if len(candle) < 6 {
			return nil, fmt.Errorf("ToHistoricalBars: candle %d has %d fields", i, len(candle))
		}

		ts, ok := candle[0].(string)
		if !ok {
			return nil, fmt.Errorf("ToHistoricalBars: candle %d: timestamp is not a string", i)
		}

		day, err := ParseTradingDay(ts)
		if err != nil {
			return nil, fmt.Errorf("ToHistoricalBars: candle %d: %w", i, err)
		}

		values := make([]float64, 5)
		for j := 0; j < 5; j++ {
			v, ok := candle[j+1].(float64)
			if !ok {
				return nil, fmt.Errorf("ToHistoricalBars: candle %d: field %d is not a number", i, j+1)
			}

			values[j] = v
		}

		bars = append(bars, HistoricalBar{
			InstrumentToken: token,
			Day:             day,
			Open:            values[0],
			High:            values[1],
			Low:             values[2],
			Close:           values[3],
			Volume:          values[4],
			Symbol:          symbol,
		})
	}

	SortBars(bars)

	return bars, nil
}
