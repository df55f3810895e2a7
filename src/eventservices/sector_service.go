package eventservices

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/rscore"
	"github.com/jiaming2012/trade-analyst/src/sector"
)

// HistoryLoader is satisfied by *HistoryStore.
type HistoryLoader interface {
	Load() ([]eventmodels.HistoricalBar, error)
}

type SectorResult struct {
	Sector     string                            `json:"sector"`
	Rows       []eventmodels.SectorRow           `json:"rows"`
	Highlights sector.Highlights                 `json:"highlights"`
	Breadth    sector.BreadthStats               `json:"breadth"`
	Errors     []*eventmodels.UpstreamFetchError `json:"errors"`
}

type SectorServiceOptions struct {
	Provider     eventmodels.QuoteProvider
	History      HistoryLoader
	Sectors      eventmodels.SectorMap
	Indices      []eventmodels.SectorIndex
	Market       []eventmodels.SectorIndex
	RScore       rscore.Config
	HighlightsN  int
	DropUnscored bool
	Now          func() time.Time
}

// SectorService builds ranked sector tables from stored history and live
// quotes. It holds no per request state, so Build may run concurrently.
type SectorService struct {
	opts SectorServiceOptions
}

func NewSectorService(opts SectorServiceOptions) *SectorService {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.HighlightsN <= 0 {
		opts.HighlightsN = 5
	}

	if len(opts.Market) == 0 {
		opts.Market = eventmodels.DefaultMarketIndices
	}

	return &SectorService{opts: opts}
}

func (s *SectorService) SectorNames() []string {
	return s.opts.Sectors.Names()
}

func (s *SectorService) Build(ctx context.Context, sectorName string) (*SectorResult, error) {
	history, err := s.opts.History.Load()
	if err != nil {
		return nil, fmt.Errorf("SectorService.Build: %w", err)
	}

	return s.build(ctx, sectorName, eventmodels.GroupBarsByToken(history))
}

// BuildMany builds each sector in its own goroutine over one shared read of
// the history file. Results keep the order of names.
func (s *SectorService) BuildMany(ctx context.Context, names []string) ([]*SectorResult, error) {
	history, err := s.opts.History.Load()
	if err != nil {
		return nil, fmt.Errorf("SectorService.BuildMany: %w", err)
	}

	byToken := eventmodels.GroupBarsByToken(history)

	results := make([]*SectorResult, len(names))
	var errs []error
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			result, err := s.build(ctx, name, byToken)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, err)
				return
			}

			results[i] = result
		}(i, name)
	}

	wg.Wait()

	if len(errs) > 0 {
		return nil, fmt.Errorf("SectorService.BuildMany: %w", errs[0])
	}

	return results, nil
}

func (s *SectorService) build(ctx context.Context, sectorName string, history map[uint32][]eventmodels.HistoricalBar) (*SectorResult, error) {
	ctx, span := otel.Tracer("SectorService").Start(ctx, "SectorService.Build")
	defer span.End()

	span.SetAttributes(attribute.String("sector", sectorName))

	members, err := s.opts.Sectors.Members(sectorName)
	if err != nil {
		return nil, fmt.Errorf("SectorService.Build: %s: %w", sectorName, err)
	}

	quotes, fetchErrs := FetchMemberQuotes(ctx, s.opts.Provider, members)

	today := eventmodels.TradingDayOf(s.opts.Now())

	series := make([]eventmodels.CompositeSeries, 0, len(members))
	for _, member := range members {
		quote, found := quotes[eventmodels.InstrumentKey(member.InstrumentToken)]
		if !found {
			continue
		}

		live := eventmodels.NewLiveBar(member.Symbol, quote, today)

		cs, err := eventmodels.NewCompositeSeries(member.InstrumentToken, history[member.InstrumentToken], &live)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("SectorService.Build: %w", err)
		}

		series = append(series, cs)
	}

	scores, err := rscore.Score(series, s.opts.RScore)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("SectorService.Build: %w", err)
	}

	rows := sector.Rank(sector.BuildRows(members, quotes, scores), s.opts.DropUnscored)

	if fetchErrs == nil {
		fetchErrs = []*eventmodels.UpstreamFetchError{}
	}

	log.WithFields(log.Fields{
		"sector": sectorName,
		"rows":   len(rows),
		"scored": len(scores),
		"errors": len(fetchErrs),
	}).Debug("built sector table")

	return &SectorResult{
		Sector:     sectorName,
		Rows:       rows,
		Highlights: sector.NewHighlights(rows, s.opts.HighlightsN),
		Breadth:    sector.Breadth(rows),
		Errors:     fetchErrs,
	}, nil
}

type IndexPerformanceResult struct {
	Indices []eventmodels.SectorIndexPerformance `json:"indices"`
	Breadth sector.BreadthStats                  `json:"breadth"`
	Errors  []*eventmodels.UpstreamFetchError    `json:"errors"`
}

// IndexPerformance quotes every configured sector index and orders them by
// percent change.
func (s *SectorService) IndexPerformance(ctx context.Context) (*IndexPerformanceResult, error) {
	ctx, span := otel.Tracer("SectorService").Start(ctx, "SectorService.IndexPerformance")
	defer span.End()

	if len(s.opts.Indices) == 0 {
		return nil, fmt.Errorf("SectorService.IndexPerformance: no sector indices configured")
	}

	members := make([]eventmodels.SectorMember, len(s.opts.Indices))
	for i, idx := range s.opts.Indices {
		members[i] = eventmodels.SectorMember{InstrumentToken: idx.InstrumentToken, Symbol: idx.Name}
	}

	quotes, fetchErrs := FetchMemberQuotes(ctx, s.opts.Provider, members)
	if fetchErrs == nil {
		fetchErrs = []*eventmodels.UpstreamFetchError{}
	}

	perf := sector.IndexPerformance(s.opts.Indices, quotes)

	return &IndexPerformanceResult{
		Indices: perf,
		Breadth: sector.IndexBreadth(perf),
		Errors:  fetchErrs,
	}, nil
}

type MarketOverviewResult struct {
	Indices []eventmodels.MarketIndexQuote    `json:"indices"`
	Errors  []*eventmodels.UpstreamFetchError `json:"errors"`
}

// MarketOverview quotes the headline indices and measures each against its
// open. It fails only when no index could be quoted.
func (s *SectorService) MarketOverview(ctx context.Context) (*MarketOverviewResult, error) {
	ctx, span := otel.Tracer("SectorService").Start(ctx, "SectorService.MarketOverview")
	defer span.End()

	members := make([]eventmodels.SectorMember, len(s.opts.Market))
	for i, idx := range s.opts.Market {
		members[i] = eventmodels.SectorMember{InstrumentToken: idx.InstrumentToken, Symbol: idx.Name}
	}

	quotes, fetchErrs := FetchMemberQuotes(ctx, s.opts.Provider, members)
	if len(quotes) == 0 && len(fetchErrs) > 0 {
		return nil, fmt.Errorf("SectorService.MarketOverview: %w", fetchErrs[0])
	}

	if fetchErrs == nil {
		fetchErrs = []*eventmodels.UpstreamFetchError{}
	}

	return &MarketOverviewResult{
		Indices: sector.MarketOverview(s.opts.Market, quotes),
		Errors:  fetchErrs,
	}, nil
}
