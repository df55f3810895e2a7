package data

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/optionchain"
)

func snapshotAt(symbol string, minute int) *eventmodels.OptionChainSnapshot {
	return eventmodels.NewOptionChainSnapshot(symbol, time.Date(2024, time.June, 3, 10, minute, 0, 0, time.UTC), nil)
}

func TestAnalysisStore(t *testing.T) {
	t.Run("analysis and signals are stored independently", func(t *testing.T) {
		store := NewAnalysisStore()
		snap := snapshotAt("NIFTY", 0)

		assert.True(t, store.PutAnalysis(snap, &optionchain.Analysis{Symbol: "NIFTY", Underlying: 24010}, nil))
		assert.True(t, store.PutSignals(snap, []eventmodels.SignalRecord{eventmodels.NewNoSignalRecord()}, nil))

		entry, found := store.Get("NIFTY")
		require.True(t, found)
		assert.Equal(t, 24010.0, entry.Analysis.Underlying)
		assert.Equal(t, snap.ID, entry.AnalysisID)
		assert.Equal(t, snap.ID, entry.SignalsID)
		assert.Len(t, entry.Signals, 1)
		assert.Same(t, snap, entry.Snapshot)
	})

	t.Run("older snapshots do not overwrite newer results", func(t *testing.T) {
		store := NewAnalysisStore()
		older, newer := snapshotAt("NIFTY", 0), snapshotAt("NIFTY", 1)

		assert.True(t, store.PutAnalysis(newer, &optionchain.Analysis{Underlying: 2}, nil))
		assert.False(t, store.PutAnalysis(older, &optionchain.Analysis{Underlying: 1}, nil))
		assert.True(t, store.PutSignals(older, nil, nil))

		entry, _ := store.Get("NIFTY")
		assert.Equal(t, 2.0, entry.Analysis.Underlying)
		assert.Same(t, newer, entry.Snapshot)
		assert.Equal(t, older.ID, entry.SignalsID)
	})

	t.Run("analysis errors are recorded and cleared", func(t *testing.T) {
		store := NewAnalysisStore()

		store.PutAnalysis(snapshotAt("BANKNIFTY", 0), nil, errors.New("no underlying"))
		entry, _ := store.Get("BANKNIFTY")
		assert.Equal(t, "no underlying", entry.AnalysisError)
		assert.Nil(t, entry.Analysis)

		store.PutAnalysis(snapshotAt("BANKNIFTY", 1), &optionchain.Analysis{}, nil)
		entry, _ = store.Get("BANKNIFTY")
		assert.Empty(t, entry.AnalysisError)
	})

	t.Run("symbols and misses", func(t *testing.T) {
		store := NewAnalysisStore()
		store.PutSignals(snapshotAt("NIFTY", 0), nil, nil)
		store.PutSignals(snapshotAt("BANKNIFTY", 0), nil, nil)

		assert.Equal(t, []string{"BANKNIFTY", "NIFTY"}, store.Symbols())

		_, found := store.Get("FINNIFTY")
		assert.False(t, found)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		store := NewAnalysisStore()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			snap := snapshotAt("NIFTY", i)
			go func() {
				defer wg.Done()
				store.PutAnalysis(snap, &optionchain.Analysis{}, nil)
			}()
			go func() {
				defer wg.Done()
				store.PutSignals(snap, nil, nil)
			}()
		}

		wg.Wait()

		entry, _ := store.Get("NIFTY")
		assert.Equal(t, 19, entry.AnalysisAt.Minute())
		assert.Equal(t, 19, entry.SignalsAt.Minute())
	})
}
