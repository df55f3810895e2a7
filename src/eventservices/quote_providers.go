package eventservices

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

// ThrottledQuoteProvider shares one rate limiter across every call to the
// wrapped provider and retries transient failures.
type ThrottledQuoteProvider struct {
	next    eventmodels.QuoteProvider
	limiter *rate.Limiter
	retry   RetryPolicy
}

func NewThrottledQuoteProvider(next eventmodels.QuoteProvider, limiter *rate.Limiter, retry RetryPolicy) *ThrottledQuoteProvider {
	return &ThrottledQuoteProvider{next: next, limiter: limiter, retry: retry}
}

func (p *ThrottledQuoteProvider) Quote(ctx context.Context, instruments []string) (map[string]eventmodels.Quote, error) {
	return Retry(ctx, p.retry, "quote", func() (map[string]eventmodels.Quote, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ThrottledQuoteProvider: rate limiter: %w", err)
		}

		return p.next.Quote(ctx, instruments)
	})
}

// CachedQuoteProvider serves quotes younger than the TTL from memory and
// only asks the wrapped provider for the rest.
type CachedQuoteProvider struct {
	next  eventmodels.QuoteProvider
	cache *cache.Cache
}

// A non positive ttl disables caching.
func NewCachedQuoteProvider(next eventmodels.QuoteProvider, ttl time.Duration) *CachedQuoteProvider {
	p := &CachedQuoteProvider{next: next}
	if ttl > 0 {
		p.cache = cache.New(ttl, 2*ttl)
	}

	return p
}

func (p *CachedQuoteProvider) Quote(ctx context.Context, instruments []string) (map[string]eventmodels.Quote, error) {
	if p.cache == nil {
		return p.next.Quote(ctx, instruments)
	}

	out := make(map[string]eventmodels.Quote, len(instruments))

	var missing []string
	for _, i := range instruments {
		if cached, found := p.cache.Get(i); found {
			out[i] = cached.(eventmodels.Quote)
		} else {
			missing = append(missing, i)
		}
	}

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := p.next.Quote(ctx, missing)
	if err != nil {
		return nil, err
	}

	for key, quote := range fetched {
		p.cache.SetDefault(key, quote)
		out[key] = quote
	}

	return out, nil
}

var fetchFailures metric.Int64Counter

func init() {
	var err error
	fetchFailures, err = otel.Meter("eventservices").Int64Counter("upstream_fetch_failures",
		metric.WithDescription("Per instrument quote fetch failures"))
	if err != nil {
		log.Errorf("failed to create upstream_fetch_failures counter: %v", err)
	}
}

// FetchMemberQuotes asks for each member's quote separately so one bad
// instrument cannot fail the batch. Failures are logged and returned
// alongside the quotes that did arrive, keyed by eventmodels.InstrumentKey.
func FetchMemberQuotes(ctx context.Context, provider eventmodels.QuoteProvider, members []eventmodels.SectorMember) (map[string]eventmodels.Quote, []*eventmodels.UpstreamFetchError) {
	quotes := make(map[string]eventmodels.Quote, len(members))
	var errs []*eventmodels.UpstreamFetchError

	for _, member := range members {
		key := eventmodels.InstrumentKey(member.InstrumentToken)

		resp, err := provider.Quote(ctx, []string{key})
		if err == nil {
			quote, found := resp[key]
			if found {
				quotes[key] = quote
				continue
			}

			err = eventmodels.QuoteNotFoundErr
		}

		fetchErr := &eventmodels.UpstreamFetchError{InstrumentToken: member.InstrumentToken, Symbol: member.Symbol, Err: err}

		log.WithFields(log.Fields{
			"symbol":           member.Symbol,
			"instrument_token": member.InstrumentToken,
		}).Warnf("skipping instrument: %v", err)

		if fetchFailures != nil {
			fetchFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", member.Symbol)))
		}

		errs = append(errs, fetchErr)
	}

	return quotes, errs
}
