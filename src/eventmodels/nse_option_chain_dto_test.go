package eventmodels

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nsePayload = `{
  "records": {
    "expiryDates": ["28-Mar-2024", "04-Apr-2024"],
    "underlyingValue": 22010.5,
    "data": [
      {
        "strikePrice": 22100, "expiryDate": "04-Apr-2024",
        "CE": {"openInterest": 100, "totalTradedVolume": 5, "underlyingValue": 22010.5}
      },
      {
        "strikePrice": 22000, "expiryDate": "28-Mar-2024",
        "CE": {"openInterest": 1500, "changeinOpenInterest": -300, "pchangeinOpenInterest": -16.6,
               "totalTradedVolume": 900, "impliedVolatility": 12.5, "bidprice": 101.5, "askPrice": 102.0,
               "lastPrice": 101.8, "totalBuyQuantity": 1200, "totalSellQuantity": 800, "underlyingValue": 22010.5},
        "PE": {"openInterest": 2500, "totalTradedVolume": 700, "impliedVolatility": 13.1}
      },
      {
        "strikePrice": 22000, "expiryDate": "04-Apr-2024",
        "PE": {"openInterest": 10}
      }
    ]
  }
}`

func TestNseOptionChainDTOToSnapshot(t *testing.T) {
	fetchedAt := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

	t.Run("normalizes and sorts rows", func(t *testing.T) {
		var dto NseOptionChainDTO
		require.NoError(t, json.Unmarshal([]byte(nsePayload), &dto))

		snapshot, err := dto.ToSnapshot("NIFTY", fetchedAt)
		require.NoError(t, err)
		require.Len(t, snapshot.Rows, 3)

		assert.Equal(t, "NIFTY", snapshot.Symbol)
		assert.Equal(t, fetchedAt, snapshot.FetchedAt)

		first := snapshot.Rows[0]
		assert.Equal(t, 22000.0, first.StrikePrice)
		assert.Equal(t, NewTradingDay(2024, time.March, 28), first.ExpiryDate)
		assert.True(t, first.Call.Listed)
		assert.Equal(t, 1500.0, first.Call.OpenInterest)
		assert.Equal(t, -300.0, first.Call.ChangeInOpenInterest)
		assert.Equal(t, 101.5, first.Call.BidPrice)
		assert.Equal(t, 1200.0, first.Call.TotalBuyQuantity)
		assert.InDelta(t, 0.5, first.Call.Spread(), 1e-9)
		assert.InDelta(t, -0.6, first.IVSkew(), 1e-9)

		second := snapshot.Rows[1]
		assert.Equal(t, 22000.0, second.StrikePrice)
		assert.Equal(t, NewTradingDay(2024, time.April, 4), second.ExpiryDate)
		assert.False(t, second.Call.Listed)
		assert.Equal(t, OptionSide{}, second.Call)
		assert.False(t, second.IsTraded())

		assert.Equal(t, 22100.0, snapshot.Rows[2].StrikePrice)
		assert.False(t, snapshot.Rows[2].Put.Listed)
	})

	t.Run("missing strike is a data error", func(t *testing.T) {
		var dto NseOptionChainDTO
		require.NoError(t, json.Unmarshal([]byte(`{"records":{"data":[{"expiryDate":"28-Mar-2024"}]}}`), &dto))

		_, err := dto.ToSnapshot("NIFTY", fetchedAt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, MalformedRowErr))

		var dataErr *DataError
		require.True(t, errors.As(err, &dataErr))
		assert.Equal(t, "strikePrice", dataErr.Field)
		assert.Equal(t, 0, dataErr.Row)
	})

	t.Run("missing expiry is a data error", func(t *testing.T) {
		var dto NseOptionChainDTO
		require.NoError(t, json.Unmarshal([]byte(`{"records":{"data":[{"strikePrice":22000}]}}`), &dto))

		_, err := dto.ToSnapshot("NIFTY", fetchedAt)
		assert.True(t, errors.Is(err, MalformedRowErr))
	})

	t.Run("unparseable expiry is a data error", func(t *testing.T) {
		var dto NseOptionChainDTO
		require.NoError(t, json.Unmarshal([]byte(`{"records":{"data":[{"strikePrice":22000,"expiryDate":"someday"}]}}`), &dto))

		_, err := dto.ToSnapshot("NIFTY", fetchedAt)
		assert.True(t, errors.Is(err, MalformedRowErr))
	})

	t.Run("expiry in another layout is a data error", func(t *testing.T) {
		for _, expiry := range []string{"2024-12-26", "12-06-2024", "2024-12-26T00:00:00Z"} {
			dto := NseOptionChainRowDTO{StrikePrice: new(float64), ExpiryDate: &expiry}
			_, err := dto.ToOptionChainRow(3)
			require.Error(t, err, expiry)
			assert.True(t, errors.Is(err, MalformedRowErr), expiry)

			var dataErr *DataError
			require.True(t, errors.As(err, &dataErr))
			assert.Equal(t, "expiryDate", dataErr.Field)
			assert.Equal(t, 3, dataErr.Row)
		}
	})

	t.Run("empty payload gives empty snapshot", func(t *testing.T) {
		dto := NseOptionChainDTO{}
		snapshot, err := dto.ToSnapshot("NIFTY", fetchedAt)
		require.NoError(t, err)
		assert.True(t, snapshot.IsEmpty())
	})
}
