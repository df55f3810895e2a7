package data

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/optionchain"
)

// AnalysisEntry is the latest known state of one index option chain.
// Analysis and signals are written independently and may refer to
// different snapshots for a short while.
type AnalysisEntry struct {
	Symbol        string                           `json:"symbol"`
	Snapshot      *eventmodels.OptionChainSnapshot `json:"-"`
	Analysis      *optionchain.Analysis            `json:"analysis"`
	AnalysisID    uuid.UUID                        `json:"analysis_snapshot_id"`
	AnalysisAt    time.Time                        `json:"analysis_at"`
	AnalysisError string                           `json:"analysis_error,omitempty"`
	Signals       []eventmodels.SignalRecord       `json:"signals"`
	MajorLevels   []eventmodels.SignalRecord       `json:"major_levels"`
	SignalsID     uuid.UUID                        `json:"signals_snapshot_id"`
	SignalsAt     time.Time                        `json:"signals_at"`
}

// AnalysisStore keeps the latest entry per symbol in memory. Writes for a
// snapshot older than the one already stored are ignored.
type AnalysisStore struct {
	mu      sync.RWMutex
	entries map[string]*AnalysisEntry
}

func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{entries: make(map[string]*AnalysisEntry)}
}

func (s *AnalysisStore) entry(symbol string) *AnalysisEntry {
	e, found := s.entries[symbol]
	if !found {
		e = &AnalysisEntry{Symbol: symbol}
		s.entries[symbol] = e
	}

	return e
}

// PutAnalysis stores the analysis of snapshot, or the error it failed with.
// It reports whether the entry changed.
func (s *AnalysisStore) PutAnalysis(snapshot *eventmodels.OptionChainSnapshot, analysis *optionchain.Analysis, analysisErr error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(snapshot.Symbol)
	if snapshot.FetchedAt.Before(e.AnalysisAt) {
		return false
	}

	if e.Snapshot == nil || !snapshot.FetchedAt.Before(e.Snapshot.FetchedAt) {
		e.Snapshot = snapshot
	}

	e.Analysis = analysis
	e.AnalysisID = snapshot.ID
	e.AnalysisAt = snapshot.FetchedAt
	e.AnalysisError = ""
	if analysisErr != nil {
		e.AnalysisError = analysisErr.Error()
	}

	return true
}

func (s *AnalysisStore) PutSignals(snapshot *eventmodels.OptionChainSnapshot, signals, majorLevels []eventmodels.SignalRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(snapshot.Symbol)
	if snapshot.FetchedAt.Before(e.SignalsAt) {
		return false
	}

	if e.Snapshot == nil || !snapshot.FetchedAt.Before(e.Snapshot.FetchedAt) {
		e.Snapshot = snapshot
	}

	e.Signals = signals
	e.MajorLevels = majorLevels
	e.SignalsID = snapshot.ID
	e.SignalsAt = snapshot.FetchedAt

	return true
}

// Get returns a copy of the entry. The slices and pointers inside are
// shared and must not be modified.
func (s *AnalysisStore) Get(symbol string) (AnalysisEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, found := s.entries[symbol]
	if !found {
		return AnalysisEntry{}, false
	}

	return *e, true
}

func (s *AnalysisStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.entries))
	for symbol := range s.entries {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)
	return symbols
}
