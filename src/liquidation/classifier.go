package liquidation

import (
	"sort"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

// Classify runs DefaultRules over every row of the unfiltered snapshot.
func Classify(snapshot *eventmodels.OptionChainSnapshot, t Thresholds) []eventmodels.SignalRecord {
	return ClassifyWithRules(snapshot, t, DefaultRules)
}

// ClassifyWithRules emits one record per fired rule per row, in row order
// and then rule order. A non empty snapshot where nothing fires yields a
// single NONE record; an empty snapshot yields no records.
func ClassifyWithRules(snapshot *eventmodels.OptionChainSnapshot, t Thresholds, rules []Rule) []eventmodels.SignalRecord {
	rows := snapshot.CopyRows()
	if len(rows) == 0 {
		return []eventmodels.SignalRecord{}
	}

	eventmodels.SortOptionChainRows(rows)

	var records []eventmodels.SignalRecord
	for _, row := range rows {
		flow := NewStrikeFlow(row)
		for _, rule := range rules {
			if rule.Match(flow, t) {
				records = append(records, rule.record(flow))
			}
		}
	}

	if len(records) == 0 {
		return []eventmodels.SignalRecord{eventmodels.NewNoSignalRecord()}
	}

	return records
}

// MajorLevels keeps the n PE and n CE records with the largest OI change,
// ordered by strike.
func MajorLevels(records []eventmodels.SignalRecord, n int) []eventmodels.SignalRecord {
	groups := GroupByType(records)

	var out []eventmodels.SignalRecord
	for _, typ := range []eventmodels.LiquidationSignalType{eventmodels.LiquidationSignalPE, eventmodels.LiquidationSignalCE} {
		group := append([]eventmodels.SignalRecord(nil), groups[typ]...)
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ChangeInOI > group[j].ChangeInOI
		})

		if len(group) > n {
			group = group[:n]
		}

		out = append(out, group...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Strike < out[j].Strike
	})

	return out
}

func GroupByType(records []eventmodels.SignalRecord) map[eventmodels.LiquidationSignalType][]eventmodels.SignalRecord {
	groups := make(map[eventmodels.LiquidationSignalType][]eventmodels.SignalRecord)
	for _, r := range records {
		groups[r.Type] = append(groups[r.Type], r)
	}

	return groups
}
