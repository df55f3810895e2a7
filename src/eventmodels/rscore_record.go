package eventmodels

const InsufficientDataSignal = "Insufficient Data"

type RScoreRecord struct {
	InstrumentToken uint32     `json:"instrument_token"`
	RScore          float64    `json:"r_score"`
	ZVolume         float64    `json:"z_volume"`
	ZTurnover       float64    `json:"z_turnover"`
	ZReturn         float64    `json:"z_return"`
	LatestClose     float64    `json:"latest_close"`
	LatestVolume    float64    `json:"latest_volume"`
	LatestDay       TradingDay `json:"latest_day"`
}
