package liquidation

import "github.com/jiaming2012/trade-analyst/src/eventmodels"

// StrikeFlow is the open interest and order book pressure at one strike.
type StrikeFlow struct {
	Strike       float64
	Expiry       eventmodels.TradingDay
	CallOI       float64
	CallOIChange float64
	CallBuy      float64
	CallSell     float64
	PutOI        float64
	PutOIChange  float64
	PutBuy       float64
	PutSell      float64
}

func NewStrikeFlow(row eventmodels.OptionChainRow) StrikeFlow {
	return StrikeFlow{
		Strike:       row.StrikePrice,
		Expiry:       row.ExpiryDate,
		CallOI:       row.Call.OpenInterest,
		CallOIChange: row.Call.ChangeInOpenInterest,
		CallBuy:      row.Call.TotalBuyQuantity,
		CallSell:     row.Call.TotalSellQuantity,
		PutOI:        row.Put.OpenInterest,
		PutOIChange:  row.Put.ChangeInOpenInterest,
		PutBuy:       row.Put.TotalBuyQuantity,
		PutSell:      row.Put.TotalSellQuantity,
	}
}

// Side selects which columns a fired rule copies into its record.
type Side int

const (
	CallSide Side = iota
	PutSide
	BothSides
)

type Rule struct {
	Name   string
	Type   eventmodels.LiquidationSignalType
	Signal string
	Action string
	Side   Side
	Match  func(f StrikeFlow, t Thresholds) bool
}

const (
	BuyCall            = "Buy Call"
	BuyPut             = "Buy Put"
	WaitAndWatch       = "Wait and Watch"
	WatchSharpBreakout = "Watch for Sharp Breakout"
)

// DefaultRules are evaluated in order and are not exclusive.
var DefaultRules = []Rule{
	{
		Name:   "ce_unwinding_bullish",
		Type:   eventmodels.LiquidationSignalCE,
		Signal: "CE Unwinding - Bullish Resistance Break",
		Action: BuyCall,
		Side:   CallSide,
		Match: func(f StrikeFlow, t Thresholds) bool {
			return t.unwinding(f.CallOI, f.CallOIChange) && f.CallBuy > f.CallSell
		},
	},
	{
		Name:   "pe_unwinding_bullish",
		Type:   eventmodels.LiquidationSignalPE,
		Signal: "PE Unwinding - Bullish Support Hold",
		Action: BuyCall,
		Side:   PutSide,
		Match: func(f StrikeFlow, t Thresholds) bool {
			return t.unwinding(f.PutOI, f.PutOIChange) && f.PutSell > f.PutBuy
		},
	},
	{
		Name:   "pe_unwinding_bearish",
		Type:   eventmodels.LiquidationSignalPE,
		Signal: "PE Unwinding - Bearish Breakdown",
		Action: BuyPut,
		Side:   PutSide,
		Match: func(f StrikeFlow, t Thresholds) bool {
			return t.unwinding(f.PutOI, f.PutOIChange) && f.PutBuy > f.PutSell
		},
	},
	{
		Name:   "ce_buildup_bearish",
		Type:   eventmodels.LiquidationSignalCE,
		Signal: "CE Buildup - Bearish Resistance",
		Action: BuyPut,
		Side:   CallSide,
		Match: func(f StrikeFlow, t Thresholds) bool {
			return t.building(f.CallOI, f.CallOIChange) && f.CallSell > f.CallBuy
		},
	},
	{
		Name:   "pe_buildup_bullish",
		Type:   eventmodels.LiquidationSignalPE,
		Signal: "PE Buildup - Bullish Support",
		Action: BuyCall,
		Side:   PutSide,
		Match: func(f StrikeFlow, t Thresholds) bool {
			return t.building(f.PutOI, f.PutOIChange) && f.PutSell > f.PutBuy
		},
	},
	{
		Name:   "battle_zone",
		Type:   eventmodels.LiquidationSignalConflict,
		Signal: "Battle Zone - Both Sides Building Positions",
		Action: WaitAndWatch,
		Side:   BothSides,
		Match: func(f StrikeFlow, t Thresholds) bool {
			return t.building(f.CallOI, f.CallOIChange) && t.building(f.PutOI, f.PutOIChange)
		},
	},
	{
		Name:   "trap_zone",
		Type:   eventmodels.LiquidationSignalConflict,
		Signal: "Trap Zone - Both Sides Unwinding",
		Action: WatchSharpBreakout,
		Side:   BothSides,
		Match: func(f StrikeFlow, t Thresholds) bool {
			return t.unwinding(f.CallOI, f.CallOIChange) && t.unwinding(f.PutOI, f.PutOIChange)
		},
	},
}

func (r Rule) record(f StrikeFlow) eventmodels.SignalRecord {
	rec := eventmodels.SignalRecord{
		Strike:     f.Strike,
		ExpiryDate: f.Expiry,
		Type:       r.Type,
		Signal:     r.Signal,
		Action:     r.Action,
	}

	switch r.Side {
	case CallSide:
		rec.OI, rec.ChangeInOI, rec.Buy, rec.Sell = f.CallOI, f.CallOIChange, f.CallBuy, f.CallSell
	case PutSide:
		rec.OI, rec.ChangeInOI, rec.Buy, rec.Sell = f.PutOI, f.PutOIChange, f.PutBuy, f.PutSell
	case BothSides:
		rec.CallOI, rec.CallOIChange = f.CallOI, f.CallOIChange
		rec.PutOI, rec.PutOIChange = f.PutOI, f.PutOIChange
	}

	return rec
}
