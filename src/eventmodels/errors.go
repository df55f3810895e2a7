package eventmodels

import (
	"encoding/json"
	"fmt"
)

var NoUnderlyingValueErr = fmt.Errorf("no underlying value in snapshot")
var MalformedRowErr = fmt.Errorf("malformed option chain row")
var UnknownSectorErr = fmt.Errorf("sector not found")
var QuoteNotFoundErr = fmt.Errorf("instrument missing from quote response")

// DataError reports malformed or missing required snapshot fields. It is
// never recovered into a zero default.
type DataError struct {
	Field string
	Row   int
	Err   error
}

func (e *DataError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("data error: row %d: %s: %v", e.Row, e.Field, e.Err)
	}

	return fmt.Sprintf("data error: %s: %v", e.Field, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func NewDataError(field string, row int, err error) *DataError {
	return &DataError{Field: field, Row: row, Err: err}
}

// UpstreamFetchError is a per instrument acquisition failure. Batches collect
// these and carry on with partial results.
type UpstreamFetchError struct {
	InstrumentToken uint32 `json:"instrument_token"`
	Symbol          string `json:"symbol"`
	Err             error  `json:"-"`
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("upstream fetch failed for %s (%d): %v", e.Symbol, e.InstrumentToken, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

func (e *UpstreamFetchError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		InstrumentToken uint32 `json:"instrument_token"`
		Symbol          string `json:"symbol"`
		Error           string `json:"error"`
	}{e.InstrumentToken, e.Symbol, e.Err.Error()})
}
