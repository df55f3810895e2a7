package eventservices

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

// HistoryStore keeps daily bars for every instrument in one CSV file:
// instrument_token,date,open,high,low,close,volume,symbol.
type HistoryStore struct {
	path string
}

func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

func (s *HistoryStore) Path() string {
	return s.path
}

// Load returns no bars when the file does not exist yet.
func (s *HistoryStore) Load() ([]eventmodels.HistoricalBar, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.WithField("path", s.path).Warn("history file not found, starting empty")
			return nil, nil
		}

		return nil, fmt.Errorf("HistoryStore.Load: failed to open %s: %w", s.path, err)
	}

	defer f.Close()

	var bars []eventmodels.HistoricalBar
	if err := gocsv.UnmarshalFile(f, &bars); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}

		return nil, fmt.Errorf("HistoryStore.Load: failed to parse %s: %w", s.path, err)
	}

	return dedupeBars(bars), nil
}

// Save replaces the file atomically with bars sorted by token and day.
func (s *HistoryStore) Save(bars []eventmodels.HistoricalBar) error {
	out := dedupeBars(bars)

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("HistoryStore.Save: failed to create %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("HistoryStore.Save: failed to create temp file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if err := gocsv.MarshalFile(&out, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("HistoryStore.Save: failed to write csv: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("HistoryStore.Save: failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("HistoryStore.Save: failed to replace %s: %w", s.path, err)
	}

	return nil
}

// Roll appends the day's bars and drops the oldest stored day so the
// window keeps its length. When the day is already stored its bars are
// replaced and nothing is dropped, so rolling twice on one day is harmless.
func (s *HistoryStore) Roll(day eventmodels.TradingDay, bars []eventmodels.HistoricalBar) error {
	if len(bars) == 0 {
		return fmt.Errorf("HistoryStore.Roll: no bars for %s", day)
	}

	stored, err := s.Load()
	if err != nil {
		return fmt.Errorf("HistoryStore.Roll: %w", err)
	}

	var oldest eventmodels.TradingDay
	hasDay := false
	for _, b := range stored {
		if b.Day.Equal(day) {
			hasDay = true
		}

		if oldest.IsZero() || b.Day.Compare(oldest) < 0 {
			oldest = b.Day
		}
	}

	kept := make([]eventmodels.HistoricalBar, 0, len(stored)+len(bars))
	for _, b := range stored {
		if b.Day.Equal(day) {
			continue
		}

		if !hasDay && b.Day.Equal(oldest) {
			continue
		}

		kept = append(kept, b)
	}

	for _, b := range bars {
		b.Day = day
		kept = append(kept, b)
	}

	log.WithFields(log.Fields{
		"day":     day.String(),
		"dropped": oldest.String(),
		"bars":    len(bars),
	}).Info("rolled history window")

	return s.Save(kept)
}

// dedupeBars keeps the last bar seen for each (token, day) and sorts.
func dedupeBars(bars []eventmodels.HistoricalBar) []eventmodels.HistoricalBar {
	type key struct {
		token uint32
		day   eventmodels.TradingDay
	}

	index := make(map[key]int, len(bars))
	out := make([]eventmodels.HistoricalBar, 0, len(bars))
	for _, b := range bars {
		k := key{b.InstrumentToken, b.Day}
		if i, found := index[k]; found {
			out[i] = b
			continue
		}

		index[k] = len(out)
		out = append(out, b)
	}

	eventmodels.SortBars(out)

	return out
}
