package run

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
)

// HistoricalFetcher is satisfied by *eventservices.KiteClient.
type HistoricalFetcher interface {
	HistoricalDaily(ctx context.Context, member eventmodels.SectorMember, from, to eventmodels.TradingDay) ([]eventmodels.HistoricalBar, error)
}

// Backfill downloads daily candles for every member, one throttled request
// per member. Members that keep failing are skipped and reported.
func Backfill(ctx context.Context, fetcher HistoricalFetcher, members []eventmodels.SectorMember, from, to eventmodels.TradingDay, limiter *rate.Limiter, retry eventservices.RetryPolicy) ([]eventmodels.HistoricalBar, []*eventmodels.UpstreamFetchError) {
	var bars []eventmodels.HistoricalBar
	var errs []*eventmodels.UpstreamFetchError

	for i, member := range members {
		memberBars, err := eventservices.Retry(ctx, retry, "HistoricalDaily", func() ([]eventmodels.HistoricalBar, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}

			return fetcher.HistoricalDaily(ctx, member, from, to)
		})

		if err != nil {
			log.WithFields(log.Fields{
				"symbol":           member.Symbol,
				"instrument_token": member.InstrumentToken,
			}).Warnf("skipping history: %v", err)

			errs = append(errs, &eventmodels.UpstreamFetchError{InstrumentToken: member.InstrumentToken, Symbol: member.Symbol, Err: err})
			continue
		}

		log.Debugf("%d/%d: fetched %d bars for %s", i+1, len(members), len(memberBars), member.Symbol)
		bars = append(bars, memberBars...)
	}

	return bars, errs
}

// LiveBars turns the members' current quotes into today's bars.
func LiveBars(ctx context.Context, provider eventmodels.QuoteProvider, members []eventmodels.SectorMember, today eventmodels.TradingDay) ([]eventmodels.HistoricalBar, []*eventmodels.UpstreamFetchError) {
	quotes, errs := eventservices.FetchMemberQuotes(ctx, provider, members)

	bars := make([]eventmodels.HistoricalBar, 0, len(quotes))
	for _, member := range members {
		quote, found := quotes[eventmodels.InstrumentKey(member.InstrumentToken)]
		if !found {
			continue
		}

		bars = append(bars, eventmodels.NewLiveBar(member.Symbol, quote, today).ToHistoricalBar())
	}

	return bars, errs
}

// RollHistory appends today's live bars to the store and drops its oldest
// day.
func RollHistory(ctx context.Context, store *eventservices.HistoryStore, provider eventmodels.QuoteProvider, members []eventmodels.SectorMember, today eventmodels.TradingDay) (int, []*eventmodels.UpstreamFetchError, error) {
	bars, errs := LiveBars(ctx, provider, members, today)
	if len(bars) == 0 {
		return 0, errs, fmt.Errorf("RollHistory: no live quotes for %d members", len(members))
	}

	if err := store.Roll(today, bars); err != nil {
		return 0, errs, fmt.Errorf("RollHistory: %w", err)
	}

	return len(bars), errs, nil
}
