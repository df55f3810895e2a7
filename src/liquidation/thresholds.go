package liquidation

import "github.com/jiaming2012/trade-analyst/src/eventmodels"

type Thresholds struct {
	OIThreshold        float64
	UnwindingThreshold float64
	BuildupThreshold   float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		OIThreshold:        20000,
		UnwindingThreshold: -2000,
		BuildupThreshold:   2000,
	}
}

func ThresholdsFromYAML(c eventmodels.LiquidationConfigYAML) Thresholds {
	return Thresholds{
		OIThreshold:        c.OIThreshold,
		UnwindingThreshold: c.UnwindingThreshold,
		BuildupThreshold:   c.BuildupThreshold,
	}
}

func (t Thresholds) heavy(oi float64) bool {
	return oi >= t.OIThreshold
}

func (t Thresholds) unwinding(oi, change float64) bool {
	return t.heavy(oi) && change <= t.UnwindingThreshold
}

func (t Thresholds) building(oi, change float64) bool {
	return t.heavy(oi) && change >= t.BuildupThreshold
}
