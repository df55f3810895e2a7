package eventmodels

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// PutCallRatio is +Inf when the call open interest sum is zero. JSON cannot
// carry infinity, so it is encoded as the string "+Inf".
type PutCallRatio float64

func NewPutCallRatio(putOI, callOI float64) PutCallRatio {
	if callOI == 0 {
		return PutCallRatio(math.Inf(1))
	}

	return PutCallRatio(putOI / callOI)
}

func (r PutCallRatio) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

func (r PutCallRatio) String() string {
	if r.IsInf() {
		return "+Inf"
	}

	return strconv.FormatFloat(float64(r), 'f', 2, 64)
}

func (r PutCallRatio) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte(`"+Inf"`), nil
	}

	return json.Marshal(float64(r))
}

func (r *PutCallRatio) UnmarshalJSON(data []byte) error {
	if string(data) == `"+Inf"` {
		*r = PutCallRatio(math.Inf(1))
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("PutCallRatio.UnmarshalJSON: %w", err)
	}

	*r = PutCallRatio(v)
	return nil
}

const (
	PCRBullish = "Bullish"
	PCRBearish = "Bearish"
)

// PCRSentiment reads a put-call ratio: above 1 is bullish, anything else
// bearish. Readings above 1.5 or below 0.5 are extreme and may precede a
// reversal.
type PCRSentiment struct {
	Bias             string `json:"bias"`
	PossibleReversal bool   `json:"possible_reversal"`
}

func (r PutCallRatio) Sentiment() PCRSentiment {
	bias := PCRBearish
	if r > 1 {
		bias = PCRBullish
	}

	return PCRSentiment{
		Bias:             bias,
		PossibleReversal: r > 1.5 || r < 0.5,
	}
}
