package optionchain

import "github.com/jiaming2012/trade-analyst/src/eventmodels"

// AnalyzedStrike is a retained chain row with its derived columns.
type AnalyzedStrike struct {
	eventmodels.OptionChainRow
	PutOIChangePercent  float64 `json:"put_oi_change_percent"`
	CallOIChangePercent float64 `json:"call_oi_change_percent"`
	IVSkew              float64 `json:"iv_skew"`
	CallSpread          float64 `json:"call_spread"`
	PutSpread           float64 `json:"put_spread"`
}

func newAnalyzedStrike(row eventmodels.OptionChainRow) AnalyzedStrike {
	return AnalyzedStrike{
		OptionChainRow:      row,
		PutOIChangePercent:  row.Put.PercentChangeInOpenInterest,
		CallOIChangePercent: row.Call.PercentChangeInOpenInterest,
		IVSkew:              row.IVSkew(),
		CallSpread:          row.Call.Spread(),
		PutSpread:           row.Put.Spread(),
	}
}

// Levels are zero when the view is empty.
type Levels struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

type View struct {
	Rows            []AnalyzedStrike `json:"rows"`
	Levels          Levels           `json:"levels"`
	TopPutOIChange  []AnalyzedStrike `json:"top_put_oi_change"`
	TopCallOIChange []AnalyzedStrike `json:"top_call_oi_change"`
	TopIVSkew       []AnalyzedStrike `json:"top_iv_skew"`
}

type Analysis struct {
	Symbol       string                   `json:"symbol"`
	Underlying   float64                  `json:"underlying"`
	LatestExpiry eventmodels.TradingDay   `json:"latest_expiry"`
	Overall      View                     `json:"overall"`
	Latest       View                     `json:"latest"`
	LiquidCalls  []AnalyzedStrike         `json:"liquid_calls"`
	LiquidPuts   []AnalyzedStrike         `json:"liquid_puts"`
	PCR          eventmodels.PutCallRatio `json:"pcr"`
	Sentiment    eventmodels.PCRSentiment `json:"sentiment"`
}

const (
	FilteredDataTable           = "Filtered Data"
	TopPutOIChangeOverallTable  = "Top PE OI Change Overall"
	TopCallOIChangeOverallTable = "Top CE OI Change Overall"
	TopIVSkewOverallTable       = "Top IV Skew Overall"
	TopPutOIChangeLatestTable   = "Top PE OI Change Latest"
	TopCallOIChangeLatestTable  = "Top CE OI Change Latest"
	TopIVSkewLatestTable        = "Top IV Skew Latest"
	LiquidCallsTable            = "Liquid Calls"
	LiquidPutsTable             = "Liquid Puts"
)

// Tables returns the named sub tables.
func (a *Analysis) Tables() map[string][]AnalyzedStrike {
	return map[string][]AnalyzedStrike{
		FilteredDataTable:           a.Overall.Rows,
		TopPutOIChangeOverallTable:  a.Overall.TopPutOIChange,
		TopCallOIChangeOverallTable: a.Overall.TopCallOIChange,
		TopIVSkewOverallTable:       a.Overall.TopIVSkew,
		TopPutOIChangeLatestTable:   a.Latest.TopPutOIChange,
		TopCallOIChangeLatestTable:  a.Latest.TopCallOIChange,
		TopIVSkewLatestTable:        a.Latest.TopIVSkew,
		LiquidCallsTable:            a.LiquidCalls,
		LiquidPutsTable:             a.LiquidPuts,
	}
}
