package eventmodels

// OptionSide holds one side (CE or PE) of an option chain row. Listed is
// false when the provider sent no object for the side; every numeric field
// is then zero.
type OptionSide struct {
	Listed                      bool    `json:"listed"`
	OpenInterest                float64 `json:"open_interest"`
	ChangeInOpenInterest        float64 `json:"change_in_open_interest"`
	PercentChangeInOpenInterest float64 `json:"percent_change_in_open_interest"`
	TotalTradedVolume           float64 `json:"total_traded_volume"`
	ImpliedVolatility           float64 `json:"implied_volatility"`
	BidPrice                    float64 `json:"bid_price"`
	AskPrice                    float64 `json:"ask_price"`
	LastPrice                   float64 `json:"last_price"`
	TotalBuyQuantity            float64 `json:"total_buy_quantity"`
	TotalSellQuantity           float64 `json:"total_sell_quantity"`
	UnderlyingValue             float64 `json:"underlying_value"`
}

func (s OptionSide) Spread() float64 {
	return s.AskPrice - s.BidPrice
}

type OptionChainRow struct {
	StrikePrice float64    `json:"strike_price"`
	ExpiryDate  TradingDay `json:"expiry_date"`
	Call        OptionSide `json:"call"`
	Put         OptionSide `json:"put"`
}

// IsTraded reports whether either side printed volume.
func (r OptionChainRow) IsTraded() bool {
	return r.Call.TotalTradedVolume != 0 || r.Put.TotalTradedVolume != 0
}

func (r OptionChainRow) IVSkew() float64 {
	return r.Call.ImpliedVolatility - r.Put.ImpliedVolatility
}
