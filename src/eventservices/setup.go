package eventservices

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

func RetryPolicyFromYAML(c eventmodels.AcquisitionConfigYAML) RetryPolicy {
	return RetryPolicy{
		InitialInterval: c.RetryInitialInterval,
		MaxInterval:     c.RetryMaxInterval,
		MaxAttempts:     c.RetryMaxAttempts,
	}
}

func NewLimiterFromYAML(c eventmodels.AcquisitionConfigYAML) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), c.Burst)
}

// NewNseClientFromYAML gets its own limiter; the exchange and the broker
// are throttled separately.
func NewNseClientFromYAML(c eventmodels.AcquisitionConfigYAML, baseURL string, cacheTTL time.Duration) (*NseClient, error) {
	return NewNseClient(NseClientOptions{
		BaseURL:  baseURL,
		Timeout:  c.RequestTimeout,
		Limiter:  NewLimiterFromYAML(c),
		CacheTTL: cacheTTL,
		Retry:    RetryPolicyFromYAML(c),
	})
}

// NewQuoteProvider wraps a broker session with a TTL cache in front of a
// throttled, retrying provider.
func NewQuoteProvider(session eventmodels.QuoteProvider, c eventmodels.AcquisitionConfigYAML) eventmodels.QuoteProvider {
	throttled := NewThrottledQuoteProvider(session, NewLimiterFromYAML(c), RetryPolicyFromYAML(c))
	return NewCachedQuoteProvider(throttled, c.CacheTTL)
}

// LoadOptionChainFile reads a saved option chain response, as returned by
// the exchange API.
func LoadOptionChainFile(path, symbol string, fetchedAt time.Time) (*eventmodels.OptionChainSnapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadOptionChainFile: failed to read %s: %w", path, err)
	}

	var dto eventmodels.NseOptionChainDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, fmt.Errorf("LoadOptionChainFile: failed to parse %s: %w", path, err)
	}

	snapshot, err := dto.ToSnapshot(symbol, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("LoadOptionChainFile: %w", err)
	}

	return snapshot, nil
}

// NewKiteClientFromEnv reads the broker session from $KITE_API_KEY and
// $KITE_ACCESS_TOKEN. $KITE_BASE_URL is optional.
func NewKiteClientFromEnv(timeout time.Duration) (*KiteClient, error) {
	apiKey, err := utils.GetEnv("KITE_API_KEY")
	if err != nil {
		return nil, fmt.Errorf("NewKiteClientFromEnv: %w", err)
	}

	accessToken, err := utils.GetEnv("KITE_ACCESS_TOKEN")
	if err != nil {
		return nil, fmt.Errorf("NewKiteClientFromEnv: %w", err)
	}

	baseURL := utils.GetEnvOrDefault("KITE_BASE_URL", DefaultKiteBaseURL)

	return NewKiteClient(baseURL, apiKey, accessToken, timeout), nil
}
