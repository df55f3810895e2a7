package eventmodels

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

const ExpiryDateLayout = "02-Jan-2006"

// TradingDay is a timezone-naive calendar date.
type TradingDay struct {
	civil.Date
}

func NewTradingDay(year int, month time.Month, day int) TradingDay {
	return TradingDay{Date: civil.Date{Year: year, Month: month, Day: day}}
}

// TradingDayOf keeps the wall clock date of t and drops its zone. The
// instant is never converted to another location first.
func TradingDayOf(t time.Time) TradingDay {
	return TradingDay{Date: civil.DateOf(t)}
}

func ParseTradingDay(s string) (TradingDay, error) {
	d, err := civil.ParseDate(s)
	if err == nil {
		return TradingDay{Date: d}, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02 15:04:05", ExpiryDateLayout, "02-01-2006"} {
		if t, tErr := time.Parse(layout, s); tErr == nil {
			return TradingDayOf(t), nil
		}
	}

	return TradingDay{}, fmt.Errorf("ParseTradingDay: unrecognized date %q: %w", s, err)
}

func ParseExpiryDate(s string) (TradingDay, error) {
	t, err := time.Parse(ExpiryDateLayout, s)
	if err != nil {
		return TradingDay{}, fmt.Errorf("ParseExpiryDate: %w", err)
	}

	return TradingDayOf(t), nil
}

func (d TradingDay) IsZero() bool {
	return d.Date == civil.Date{}
}

func (d TradingDay) Equal(other TradingDay) bool {
	return d.Date == other.Date
}

// Compare returns -1, 0 or 1.
func (d TradingDay) Compare(other TradingDay) int {
	switch {
	case d.Before(other.Date):
		return -1
	case d.After(other.Date):
		return 1
	default:
		return 0
	}
}

func (d TradingDay) ExpiryString() string {
	return d.In(time.UTC).Format(ExpiryDateLayout)
}

// MarshalJSON encodes the zero day as null. civil.Date would otherwise
// write "0000-00-00", which it cannot parse back.
func (d TradingDay) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(d.String())
}

func (d *TradingDay) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = TradingDay{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("TradingDay.UnmarshalJSON: %w", err)
	}

	if s == "" {
		*d = TradingDay{}
		return nil
	}

	parsed, err := ParseTradingDay(s)
	if err != nil {
		return fmt.Errorf("TradingDay.UnmarshalJSON: %w", err)
	}

	*d = parsed
	return nil
}

func (d TradingDay) MarshalCSV() (string, error) {
	return d.String(), nil
}

func (d *TradingDay) UnmarshalCSV(s string) error {
	parsed, err := ParseTradingDay(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
