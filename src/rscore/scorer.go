package rscore

import (
	"fmt"
	"math"
	"sort"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/indicators"
)

const (
	StrongBuy  = "Strong Buy"
	Buy        = "Buy"
	Neutral    = "Neutral"
	Sell       = "Sell"
	StrongSell = "Strong Sell"
)

// Score ranks every series with at least MinDays+1 days against its own
// trailing window. Shorter series, and series whose z-scores are not finite,
// are left out rather than scored as zero.
// Records are ordered by instrument token.
func Score(series []eventmodels.CompositeSeries, cfg Config) ([]eventmodels.RScoreRecord, error) {
	if cfg.MinDays < 2 {
		return nil, fmt.Errorf("Score: min days must be at least 2, got %d", cfg.MinDays)
	}

	records := make([]eventmodels.RScoreRecord, 0, len(series))
	for _, s := range series {
		record, ok, err := scoreSeries(s, cfg)
		if err != nil {
			return nil, fmt.Errorf("Score: instrument %d: %w", s.InstrumentToken, err)
		}

		if ok {
			records = append(records, record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].InstrumentToken < records[j].InstrumentToken
	})

	return records, nil
}

func scoreSeries(s eventmodels.CompositeSeries, cfg Config) (eventmodels.RScoreRecord, bool, error) {
	bars := append([]eventmodels.HistoricalBar(nil), s.Bars...)
	eventmodels.SortBars(bars)

	if len(bars) < cfg.MinDays+1 {
		return eventmodels.RScoreRecord{}, false, nil
	}

	latest := bars[len(bars)-1]
	window := bars[len(bars)-1-cfg.MinDays : len(bars)-1]

	volumes := make([]float64, len(window))
	turnovers := make([]float64, len(window))
	returns := make([]float64, len(window))
	for i, b := range window {
		volumes[i] = b.Volume
		turnovers[i] = b.Turnover()
		returns[i] = b.Return()
	}

	zVolume, err := indicators.ZScore(latest.Volume, volumes, cfg.Epsilon)
	if err != nil {
		return eventmodels.RScoreRecord{}, false, fmt.Errorf("volume: %w", err)
	}

	zTurnover, err := indicators.ZScore(latest.Turnover(), turnovers, cfg.Epsilon)
	if err != nil {
		return eventmodels.RScoreRecord{}, false, fmt.Errorf("turnover: %w", err)
	}

	zReturn, err := indicators.ZScore(latest.Return(), returns, cfg.Epsilon)
	if err != nil {
		return eventmodels.RScoreRecord{}, false, fmt.Errorf("return: %w", err)
	}

	// a zero open makes the return undefined; such a series is not scoreable
	for _, z := range []float64{zVolume.ZScore, zTurnover.ZScore, zReturn.ZScore} {
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return eventmodels.RScoreRecord{}, false, nil
		}
	}

	raw := cfg.Weights.Volume*zVolume.ZScore + cfg.Weights.Turnover*zTurnover.ZScore + cfg.Weights.Return*zReturn.ZScore

	return eventmodels.RScoreRecord{
		InstrumentToken: s.InstrumentToken,
		RScore:          clamp(50+10*raw, 0, 100),
		ZVolume:         zVolume.ZScore,
		ZTurnover:       zTurnover.ZScore,
		ZReturn:         zReturn.ZScore,
		LatestClose:     latest.Close,
		LatestVolume:    latest.Volume,
		LatestDay:       latest.Day,
	}, true, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// SignalFor bands a score. A nil score means the instrument was not scored.
func SignalFor(score *float64) string {
	if score == nil {
		return eventmodels.InsufficientDataSignal
	}

	switch s := *score; {
	case s >= 80:
		return StrongBuy
	case s >= 65:
		return Buy
	case s >= 35:
		return Neutral
	case s >= 20:
		return Sell
	default:
		return StrongSell
	}
}
