package optionchain

import "github.com/jiaming2012/trade-analyst/src/eventmodels"

type Config struct {
	// RangeWidth is the distance in index points kept on each side of the
	// underlying.
	RangeWidth float64
	// MaxSpread is the exclusive bid-ask spread bound for liquidity leaders.
	MaxSpread float64
	TopN      int
}

func DefaultConfig() Config {
	return Config{
		RangeWidth: 500,
		MaxSpread:  2,
		TopN:       3,
	}
}

func ConfigFromYAML(c eventmodels.OptionChainConfigYAML) Config {
	return Config{
		RangeWidth: c.RangeWidth,
		MaxSpread:  c.MaxSpread,
		TopN:       c.TopN,
	}
}
