package eventservices

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

// fakeQuoteProvider answers from a fixed map. Keys listed in failures
// return that error instead.
type fakeQuoteProvider struct {
	mu       sync.Mutex
	quotes   map[string]eventmodels.Quote
	failures map[string]error
	requests [][]string
}

func (p *fakeQuoteProvider) Quote(ctx context.Context, instruments []string) (map[string]eventmodels.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, append([]string(nil), instruments...))

	out := make(map[string]eventmodels.Quote)
	for _, i := range instruments {
		if err, found := p.failures[i]; found {
			return nil, err
		}

		if q, found := p.quotes[i]; found {
			out[i] = q
		}
	}

	return out, nil
}

func (p *fakeQuoteProvider) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.requests)
}

func quoteFor(token uint32, last, prevClose, volume float64) eventmodels.Quote {
	return eventmodels.Quote{
		InstrumentToken: token,
		LastPrice:       last,
		Volume:          volume,
		OHLC:            eventmodels.QuoteOHLC{Open: prevClose, High: last, Low: prevClose, Close: prevClose},
	}
}

func TestFetchMemberQuotes(t *testing.T) {
	provider := &fakeQuoteProvider{
		quotes: map[string]eventmodels.Quote{
			"1": quoteFor(1, 101, 100, 1000),
			"3": quoteFor(3, 99, 100, 3000),
		},
		failures: map[string]error{
			"2": errors.New("connection reset"),
		},
	}

	members := []eventmodels.SectorMember{
		{InstrumentToken: 1, Symbol: "AAA"},
		{InstrumentToken: 2, Symbol: "BBB"},
		{InstrumentToken: 3, Symbol: "CCC"},
		{InstrumentToken: 4, Symbol: "DDD"},
	}

	quotes, errs := FetchMemberQuotes(context.Background(), provider, members)

	assert.Len(t, quotes, 2)
	assert.Contains(t, quotes, "1")
	assert.Contains(t, quotes, "3")

	require.Len(t, errs, 2)
	assert.Equal(t, "BBB", errs[0].Symbol)
	assert.EqualError(t, errs[0].Err, "connection reset")
	assert.Equal(t, uint32(4), errs[1].InstrumentToken)
	assert.ErrorIs(t, errs[1], eventmodels.QuoteNotFoundErr)

	assert.Equal(t, 4, provider.requestCount())
}

func TestCachedQuoteProvider(t *testing.T) {
	t.Run("only missing instruments reach the wrapped provider", func(t *testing.T) {
		next := &fakeQuoteProvider{quotes: map[string]eventmodels.Quote{
			"1": quoteFor(1, 101, 100, 1000),
			"2": quoteFor(2, 202, 200, 2000),
		}}
		p := NewCachedQuoteProvider(next, time.Minute)

		_, err := p.Quote(context.Background(), []string{"1"})
		require.NoError(t, err)

		quotes, err := p.Quote(context.Background(), []string{"1", "2"})
		require.NoError(t, err)
		assert.Len(t, quotes, 2)

		require.Len(t, next.requests, 2)
		assert.Equal(t, []string{"2"}, next.requests[1])

		_, err = p.Quote(context.Background(), []string{"2", "1"})
		require.NoError(t, err)
		assert.Len(t, next.requests, 2)
	})

	t.Run("zero ttl disables the cache", func(t *testing.T) {
		next := &fakeQuoteProvider{quotes: map[string]eventmodels.Quote{"1": quoteFor(1, 101, 100, 1000)}}
		p := NewCachedQuoteProvider(next, 0)

		for i := 0; i < 3; i++ {
			_, err := p.Quote(context.Background(), []string{"1"})
			require.NoError(t, err)
		}

		assert.Equal(t, 3, next.requestCount())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := &fakeQuoteProvider{failures: map[string]error{"1": errors.New("boom")}}
		p := NewCachedQuoteProvider(next, time.Minute)

		_, err := p.Quote(context.Background(), []string{"1"})
		assert.Error(t, err)

		delete(next.failures, "1")
		next.quotes = map[string]eventmodels.Quote{"1": quoteFor(1, 101, 100, 1000)}

		quotes, err := p.Quote(context.Background(), []string{"1"})
		require.NoError(t, err)
		assert.Equal(t, 101.0, quotes["1"].LastPrice)
	})
}

// flakyQuoteProvider fails the first n calls with a 503.
type flakyQuoteProvider struct {
	fakeQuoteProvider
	n int
}

func (p *flakyQuoteProvider) Quote(ctx context.Context, instruments []string) (map[string]eventmodels.Quote, error) {
	if p.n > 0 {
		p.n--
		return nil, &HTTPStatusError{StatusCode: http.StatusServiceUnavailable, Status: "503 Service Unavailable"}
	}

	return p.fakeQuoteProvider.Quote(ctx, instruments)
}

func TestThrottledQuoteProvider(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		next := &flakyQuoteProvider{n: 2}
		next.quotes = map[string]eventmodels.Quote{"1": quoteFor(1, 101, 100, 1000)}

		p := NewThrottledQuoteProvider(next, rate.NewLimiter(rate.Inf, 1), fastRetry())

		quotes, err := p.Quote(context.Background(), []string{"1"})
		require.NoError(t, err)
		assert.Equal(t, 101.0, quotes["1"].LastPrice)
		assert.Equal(t, 0, next.n)
	})

	t.Run("waits on the shared limiter", func(t *testing.T) {
		next := &fakeQuoteProvider{quotes: map[string]eventmodels.Quote{"1": quoteFor(1, 101, 100, 1000)}}
		limiter := rate.NewLimiter(rate.Every(20*time.Millisecond), 1)
		p := NewThrottledQuoteProvider(next, limiter, fastRetry())

		start := time.Now()
		for i := 0; i < 3; i++ {
			_, err := p.Quote(context.Background(), []string{"1"})
			require.NoError(t, err)
		}

		assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
	})

	t.Run("cancelled context", func(t *testing.T) {
		next := &fakeQuoteProvider{}
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		limiter.Allow()

		p := NewThrottledQuoteProvider(next, limiter, fastRetry())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Quote(ctx, []string{"1"})
		assert.Error(t, err)
		assert.Equal(t, 0, next.requestCount())
	})
}
