package eventservices

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

func june(day int) eventmodels.TradingDay {
	return eventmodels.NewTradingDay(2024, time.June, day)
}

func bar(token uint32, symbol string, day eventmodels.TradingDay, close, volume float64) eventmodels.HistoricalBar {
	return eventmodels.HistoricalBar{
		InstrumentToken: token,
		Day:             day,
		Open:            close - 1,
		High:            close + 1,
		Low:             close - 2,
		Close:           close,
		Volume:          volume,
		Symbol:          symbol,
	}
}

func daysOf(bars []eventmodels.HistoricalBar) []eventmodels.TradingDay {
	seen := map[eventmodels.TradingDay]bool{}
	var out []eventmodels.TradingDay
	for _, b := range bars {
		if !seen[b.Day] {
			seen[b.Day] = true
			out = append(out, b.Day)
		}
	}

	return out
}

func TestHistoryStore(t *testing.T) {
	t.Run("missing file loads empty", func(t *testing.T) {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.csv"))

		bars, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, bars)
	})

	t.Run("save writes the csv layout and load reads it back sorted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "history.csv")
		store := NewHistoryStore(path)

		err := store.Save([]eventmodels.HistoricalBar{
			bar(2, "BBB", june(4), 50, 500),
			bar(1, "AAA", june(4), 11, 110),
			bar(1, "AAA", june(3), 10, 100),
		})
		require.NoError(t, err)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "instrument_token,date,open,high,low,close,volume,symbol")
		assert.Contains(t, string(raw), "1,2024-06-03,9,11,8,10,100,AAA")

		bars, err := store.Load()
		require.NoError(t, err)
		require.Len(t, bars, 3)
		assert.Equal(t, uint32(1), bars[0].InstrumentToken)
		assert.Equal(t, june(3), bars[0].Day)
		assert.Equal(t, june(4), bars[1].Day)
		assert.Equal(t, "BBB", bars[2].Symbol)
	})

	t.Run("duplicate days keep the last bar", func(t *testing.T) {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.csv"))

		err := store.Save([]eventmodels.HistoricalBar{
			bar(1, "AAA", june(3), 10, 100),
			bar(1, "AAA", june(3), 12, 120),
		})
		require.NoError(t, err)

		bars, err := store.Load()
		require.NoError(t, err)
		require.Len(t, bars, 1)
		assert.Equal(t, 12.0, bars[0].Close)
	})
}

func TestHistoryStoreRoll(t *testing.T) {
	seed := func(t *testing.T) *HistoryStore {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.csv"))
		require.NoError(t, store.Save([]eventmodels.HistoricalBar{
			bar(1, "AAA", june(3), 10, 100),
			bar(1, "AAA", june(4), 11, 110),
			bar(1, "AAA", june(5), 12, 120),
			bar(2, "BBB", june(3), 50, 500),
			bar(2, "BBB", june(4), 51, 510),
			bar(2, "BBB", june(5), 52, 520),
		}))

		return store
	}

	t.Run("drops the oldest day and appends the new one", func(t *testing.T) {
		store := seed(t)

		err := store.Roll(june(6), []eventmodels.HistoricalBar{
			bar(1, "AAA", june(6), 13, 130),
			bar(2, "BBB", june(6), 53, 530),
		})
		require.NoError(t, err)

		bars, err := store.Load()
		require.NoError(t, err)
		require.Len(t, bars, 6)
		assert.Equal(t, []eventmodels.TradingDay{june(4), june(5), june(6)}, daysOf(bars))
	})

	t.Run("rolling the same day twice replaces without dropping", func(t *testing.T) {
		store := seed(t)

		require.NoError(t, store.Roll(june(6), []eventmodels.HistoricalBar{bar(1, "AAA", june(6), 13, 130)}))
		require.NoError(t, store.Roll(june(6), []eventmodels.HistoricalBar{bar(1, "AAA", june(6), 14, 140)}))

		bars, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, []eventmodels.TradingDay{june(4), june(5), june(6)}, daysOf(bars[:3]))

		latest := bars[2]
		assert.Equal(t, june(6), latest.Day)
		assert.Equal(t, 14.0, latest.Close)
	})

	t.Run("bars are stamped with the rolled day", func(t *testing.T) {
		store := seed(t)

		require.NoError(t, store.Roll(june(6), []eventmodels.HistoricalBar{bar(1, "AAA", eventmodels.TradingDay{}, 13, 130)}))

		bars, err := store.Load()
		require.NoError(t, err)
		assert.Contains(t, daysOf(bars), june(6))
	})

	t.Run("no bars", func(t *testing.T) {
		store := seed(t)
		assert.Error(t, store.Roll(june(6), nil))
	})
}

func TestLoadSectorData(t *testing.T) {
	dir := t.TempDir()

	t.Run("sector map", func(t *testing.T) {
		path := filepath.Join(dir, "sectors.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"NIFTY IT": [{"instrument_token": 408065, "symbol": "INFY"}, {"instrument_token": 2953217, "symbol": "TCS"}]}`), 0o644))

		sectors, err := LoadSectorMap(path)
		require.NoError(t, err)

		members, err := sectors.Members("NIFTY IT")
		require.NoError(t, err)
		assert.Equal(t, "TCS", members[1].Symbol)

		_, err = sectors.Members("NIFTY AUTO")
		assert.ErrorIs(t, err, eventmodels.UnknownSectorErr)
	})

	t.Run("sector indices", func(t *testing.T) {
		path := filepath.Join(dir, "indices.csv")
		require.NoError(t, os.WriteFile(path, []byte("instrument_token,name\n259849,NIFTY IT\n257801,NIFTY FIN SERVICE\n"), 0o644))

		indices, err := LoadSectorIndices(path)
		require.NoError(t, err)
		require.Len(t, indices, 2)
		assert.Equal(t, eventmodels.SectorIndex{InstrumentToken: 259849, Name: "NIFTY IT"}, indices[0])
	})

	t.Run("missing files", func(t *testing.T) {
		_, err := LoadSectorMap(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)

		_, err = LoadSectorIndices(filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})
}
