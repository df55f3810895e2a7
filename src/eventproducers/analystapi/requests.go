package analystapi

import (
	"fmt"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/jiaming2012/trade-analyst/src/liquidation"
	"github.com/jiaming2012/trade-analyst/src/optionchain"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// AnalysisQuery overrides the service's analyzer config for one request.
type AnalysisQuery struct {
	RangeWidth *float64 `schema:"range_width"`
	MaxSpread  *float64 `schema:"max_spread"`
	TopN       *int     `schema:"top_n"`
}

func (q *AnalysisQuery) IsEmpty() bool {
	return q.RangeWidth == nil && q.MaxSpread == nil && q.TopN == nil
}

func (q *AnalysisQuery) Apply(cfg optionchain.Config) (optionchain.Config, error) {
	if q.RangeWidth != nil {
		if *q.RangeWidth < 0 {
			return cfg, fmt.Errorf("range_width must not be negative")
		}

		cfg.RangeWidth = *q.RangeWidth
	}

	if q.MaxSpread != nil {
		cfg.MaxSpread = *q.MaxSpread
	}

	if q.TopN != nil {
		if *q.TopN <= 0 {
			return cfg, fmt.Errorf("top_n must be positive")
		}

		cfg.TopN = *q.TopN
	}

	return cfg, nil
}

type LiquidationQuery struct {
	OIThreshold        *float64 `schema:"oi_threshold"`
	UnwindingThreshold *float64 `schema:"unwinding_threshold"`
	BuildupThreshold   *float64 `schema:"buildup_threshold"`
	MajorLevels        *int     `schema:"major_levels"`
}

func (q *LiquidationQuery) IsEmpty() bool {
	return q.OIThreshold == nil && q.UnwindingThreshold == nil && q.BuildupThreshold == nil && q.MajorLevels == nil
}

func (q *LiquidationQuery) Apply(t liquidation.Thresholds, majorLevels int) (liquidation.Thresholds, int, error) {
	if q.OIThreshold != nil {
		t.OIThreshold = *q.OIThreshold
	}

	if q.UnwindingThreshold != nil {
		t.UnwindingThreshold = *q.UnwindingThreshold
	}

	if q.BuildupThreshold != nil {
		t.BuildupThreshold = *q.BuildupThreshold
	}

	if q.MajorLevels != nil {
		if *q.MajorLevels <= 0 {
			return t, 0, fmt.Errorf("major_levels must be positive")
		}

		majorLevels = *q.MajorLevels
	}

	return t, majorLevels, nil
}

type SectorQuery struct {
	DropUnscored bool `schema:"drop_unscored"`
}

type StreamQuery struct {
	Symbol string `schema:"symbol"`
}

func decodeQuery(dst interface{}, r *http.Request) error {
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("decodeQuery: %w", err)
	}

	return nil
}
