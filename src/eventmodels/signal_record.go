package eventmodels

type LiquidationSignalType string

const (
	LiquidationSignalCE       LiquidationSignalType = "CE"
	LiquidationSignalPE       LiquidationSignalType = "PE"
	LiquidationSignalConflict LiquidationSignalType = "CONFLICT"
	LiquidationSignalNone     LiquidationSignalType = "NONE"
)

const (
	NoLiquidationSignal = "No strong liquidation signals detected"
	NoActionRequired    = "No Action"
)

// SignalRecord is one fired liquidation rule at one strike. Single sided
// records fill OI, ChangeInOI, Buy and Sell; conflict records fill the
// Call and Put columns. NONE is only used by the no signal record.
type SignalRecord struct {
	Strike       float64               `json:"strike"`
	ExpiryDate   TradingDay            `json:"expiry_date"`
	Type         LiquidationSignalType `json:"type"`
	Signal       string                `json:"signal"`
	Action       string                `json:"action"`
	OI           float64               `json:"oi,omitempty"`
	ChangeInOI   float64               `json:"change_in_oi,omitempty"`
	Buy          float64               `json:"buy,omitempty"`
	Sell         float64               `json:"sell,omitempty"`
	CallOI       float64               `json:"call_oi,omitempty"`
	CallOIChange float64               `json:"call_oi_change,omitempty"`
	PutOI        float64               `json:"put_oi,omitempty"`
	PutOIChange  float64               `json:"put_oi_change,omitempty"`
}

func NewNoSignalRecord() SignalRecord {
	return SignalRecord{
		Type:   LiquidationSignalNone,
		Signal: NoLiquidationSignal,
		Action: NoActionRequired,
	}
}

func (r SignalRecord) IsNoSignal() bool {
	return r.Type == LiquidationSignalNone
}
