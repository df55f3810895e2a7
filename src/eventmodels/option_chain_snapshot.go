package eventmodels

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// OptionChainSnapshot is one polled option chain. Rows are kept sorted by
// strike and then expiry, so row order is also lowest strike first.
type OptionChainSnapshot struct {
	ID        uuid.UUID        `json:"id"`
	Symbol    string           `json:"symbol"`
	FetchedAt time.Time        `json:"fetched_at"`
	Rows      []OptionChainRow `json:"rows"`
}

func NewOptionChainSnapshot(symbol string, fetchedAt time.Time, rows []OptionChainRow) *OptionChainSnapshot {
	sorted := make([]OptionChainRow, len(rows))
	copy(sorted, rows)
	SortOptionChainRows(sorted)

	return &OptionChainSnapshot{
		ID:        uuid.New(),
		Symbol:    symbol,
		FetchedAt: fetchedAt,
		Rows:      sorted,
	}
}

func SortOptionChainRows(rows []OptionChainRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].StrikePrice != rows[j].StrikePrice {
			return rows[i].StrikePrice < rows[j].StrikePrice
		}

		return rows[i].ExpiryDate.Compare(rows[j].ExpiryDate) < 0
	})
}

// CopyRows returns a copy that callers may filter and reorder freely.
func (s *OptionChainSnapshot) CopyRows() []OptionChainRow {
	if s == nil {
		return nil
	}

	out := make([]OptionChainRow, len(s.Rows))
	copy(out, s.Rows)
	return out
}

func (s *OptionChainSnapshot) IsEmpty() bool {
	return s == nil || len(s.Rows) == 0
}
