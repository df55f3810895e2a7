package eventmodels

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTradingDay(t *testing.T) {
	t.Run("iso date", func(t *testing.T) {
		d, err := ParseTradingDay("2024-03-15")
		require.NoError(t, err)
		assert.Equal(t, NewTradingDay(2024, time.March, 15), d)
	})

	t.Run("expiry layout", func(t *testing.T) {
		d, err := ParseTradingDay("28-Mar-2024")
		require.NoError(t, err)
		assert.Equal(t, NewTradingDay(2024, time.March, 28), d)
	})

	t.Run("zone is dropped, not converted", func(t *testing.T) {
		// 00:30 in +05:30 is the previous day in UTC
		d, err := ParseTradingDay("2024-03-15T00:30:00+0530")
		require.NoError(t, err)
		assert.Equal(t, NewTradingDay(2024, time.March, 15), d)

		d, err = ParseTradingDay("2024-03-15T00:30:00+05:30")
		require.NoError(t, err)
		assert.Equal(t, NewTradingDay(2024, time.March, 15), d)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseTradingDay("not a date")
		assert.Error(t, err)
	})
}

func TestTradingDayCompare(t *testing.T) {
	a := NewTradingDay(2024, time.January, 1)
	b := NewTradingDay(2024, time.January, 2)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Equal(NewTradingDay(2024, time.January, 1)))
	assert.True(t, TradingDay{}.IsZero())
	assert.Equal(t, "01-Jan-2024", a.ExpiryString())
}

func TestTradingDayEncoding(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		d := NewTradingDay(2024, time.July, 4)
		b, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2024-07-04"`, string(b))

		var out TradingDay
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, d, out)
	})

	t.Run("zero day is null", func(t *testing.T) {
		b, err := json.Marshal(TradingDay{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))

		out := NewTradingDay(2024, time.July, 4)
		require.NoError(t, json.Unmarshal(b, &out))
		assert.True(t, out.IsZero())

		require.NoError(t, json.Unmarshal([]byte(`""`), &out))
		assert.True(t, out.IsZero())
	})

	t.Run("no signal record round trips", func(t *testing.T) {
		b, err := json.Marshal(NewNoSignalRecord())
		require.NoError(t, err)
		assert.Contains(t, string(b), `"expiry_date":null`)

		var out SignalRecord
		require.NoError(t, json.Unmarshal(b, &out))
		assert.True(t, out.IsNoSignal())
		assert.True(t, out.ExpiryDate.IsZero())
		assert.Equal(t, NewNoSignalRecord(), out)
	})

	t.Run("bad json", func(t *testing.T) {
		var out TradingDay
		assert.Error(t, json.Unmarshal([]byte(`"not a date"`), &out))
		assert.Error(t, json.Unmarshal([]byte(`20240704`), &out))
	})

	t.Run("csv", func(t *testing.T) {
		d := NewTradingDay(2024, time.July, 4)
		s, err := d.MarshalCSV()
		require.NoError(t, err)
		assert.Equal(t, "2024-07-04", s)

		var out TradingDay
		require.NoError(t, out.UnmarshalCSV("2024-07-04 00:00:00"))
		assert.Equal(t, d, out)
	})
}
