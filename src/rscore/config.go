package rscore

import (
	"fmt"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

type Weights struct {
	Volume   float64
	Turnover float64
	Return   float64
}

// EndOfDayWeights is the default scheme, used against settled daily bars.
var EndOfDayWeights = Weights{Volume: 0.4, Turnover: 0.3, Return: 0.3}

// IntradayWeights leans on the return while the live bar is still forming.
var IntradayWeights = Weights{Volume: 0.2, Turnover: 0.3, Return: 0.5}

const (
	EndOfDayPreset = "end_of_day"
	IntradayPreset = "intraday"
)

func WeightsForPreset(name string) (Weights, error) {
	switch name {
	case EndOfDayPreset, "":
		return EndOfDayWeights, nil
	case IntradayPreset:
		return IntradayWeights, nil
	default:
		return Weights{}, fmt.Errorf("WeightsForPreset: unknown preset %q", name)
	}
}

type Config struct {
	// MinDays is the length of the trailing window. An instrument needs
	// MinDays+1 days to be scored.
	MinDays int
	Weights Weights
	Epsilon float64
}

func DefaultConfig() Config {
	return Config{
		MinDays: 18,
		Weights: EndOfDayWeights,
		Epsilon: 1e-6,
	}
}

func ConfigFromYAML(c eventmodels.RScoreConfigYAML) (Config, error) {
	cfg := Config{
		MinDays: c.MinDays,
		Epsilon: c.Epsilon,
	}

	if c.Weights != nil {
		cfg.Weights = Weights{Volume: c.Weights.Volume, Turnover: c.Weights.Turnover, Return: c.Weights.Return}
	} else {
		w, err := WeightsForPreset(c.Preset)
		if err != nil {
			return Config{}, fmt.Errorf("ConfigFromYAML: %w", err)
		}

		cfg.Weights = w
	}

	if cfg.MinDays < 2 {
		return Config{}, fmt.Errorf("ConfigFromYAML: min_days must be at least 2, got %d", cfg.MinDays)
	}

	return cfg, nil
}
