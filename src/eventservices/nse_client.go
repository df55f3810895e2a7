package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

const (
	DefaultNseBaseURL  = "https://www.nseindia.com"
	nseOptionChainPath = "/api/option-chain-indices"
	browserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// NseClient reads index option chains from the exchange's public JSON API.
// The API only answers requests that carry the cookies handed out by the
// home page, so the client warms its cookie jar before the first fetch and
// again after a rejected request.
type NseClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
	retry   RetryPolicy
	now     func() time.Time

	mu     sync.Mutex
	warmed bool
}

type NseClientOptions struct {
	BaseURL  string
	Timeout  time.Duration
	Limiter  *rate.Limiter
	CacheTTL time.Duration
	Retry    RetryPolicy
}

func NewNseClient(opts NseClientOptions) (*NseClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("NewNseClient: failed to create cookie jar: %w", err)
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNseBaseURL
	}

	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Limit(3), 1)
	}

	c := &NseClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Jar: jar, Timeout: opts.Timeout},
		limiter: opts.Limiter,
		retry:   opts.Retry,
		now:     time.Now,
	}

	// a zero ttl would make go-cache keep entries forever
	if opts.CacheTTL > 0 {
		c.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}

	return c, nil
}

// FetchOptionChain returns the normalized chain for an index symbol such as
// NIFTY. Results are cached per symbol for the configured TTL.
func (c *NseClient) FetchOptionChain(ctx context.Context, symbol string) (*eventmodels.OptionChainSnapshot, error) {
	tracer := otel.Tracer("NseClient")
	ctx, span := tracer.Start(ctx, "FetchOptionChain")
	defer span.End()

	span.SetAttributes(attribute.String("symbol", symbol))

	if c.cache != nil {
		if cached, found := c.cache.Get(symbol); found {
			return cached.(*eventmodels.OptionChainSnapshot), nil
		}
	}

	dto, err := Retry(ctx, c.retry, "nse.option_chain", func() (*eventmodels.NseOptionChainDTO, error) {
		return c.fetchOnce(ctx, symbol)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("NseClient.FetchOptionChain: %s: %w", symbol, err)
	}

	snapshot, err := dto.ToSnapshot(symbol, c.now())
	if err != nil {
		return nil, fmt.Errorf("NseClient.FetchOptionChain: %s: %w", symbol, err)
	}

	log.WithFields(log.Fields{
		"symbol": symbol,
		"rows":   len(snapshot.Rows),
	}).Debug("fetched option chain")

	if c.cache != nil {
		c.cache.SetDefault(symbol, snapshot)
	}

	return snapshot, nil
}

func (c *NseClient) fetchOnce(ctx context.Context, symbol string) (*eventmodels.NseOptionChainDTO, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetchOnce: rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s%s?symbol=%s", c.baseURL, nseOptionChainPath, url.QueryEscape(symbol))
	req, err := c.newRequest(ctx, u)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", c.baseURL+"/option-chain")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetchOnce: failed to fetch option chain: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			c.resetSession()
			// retried with a fresh session
			return nil, fmt.Errorf("fetchOnce: session rejected: %w", &HTTPStatusError{StatusCode: http.StatusServiceUnavailable, Status: res.Status})
		}

		return nil, &HTTPStatusError{StatusCode: res.StatusCode, Status: res.Status}
	}

	var dto eventmodels.NseOptionChainDTO
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("fetchOnce: failed to decode json: %w", err)
	}

	return &dto, nil
}

func (c *NseClient) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.warmed {
		return nil
	}

	if err := c.warmUp(ctx); err != nil {
		return err
	}

	c.warmed = true
	return nil
}

func (c *NseClient) resetSession() {
	c.mu.Lock()
	c.warmed = false
	c.mu.Unlock()
}

func (c *NseClient) warmUp(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("warmUp: rate limiter: %w", err)
	}

	req, err := c.newRequest(ctx, c.baseURL+"/")
	if err != nil {
		return err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("warmUp: failed to load home page: %w", err)
	}

	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &HTTPStatusError{StatusCode: res.StatusCode, Status: res.Status}
	}

	return nil
}

func (c *NseClient) newRequest(ctx context.Context, u string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("newRequest: failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	return req, nil
}
