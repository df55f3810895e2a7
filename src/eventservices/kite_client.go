package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

const DefaultKiteBaseURL = "https://api.kite.trade"

// KiteClient talks to the brokerage REST API. It implements
// eventmodels.QuoteProvider without throttling; wrap it in a
// ThrottledQuoteProvider for batch use.
type KiteClient struct {
	baseURL     string
	apiKey      string
	accessToken string
	client      *http.Client
}

func NewKiteClient(baseURL, apiKey, accessToken string, timeout time.Duration) *KiteClient {
	if baseURL == "" {
		baseURL = DefaultKiteBaseURL
	}

	return &KiteClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *KiteClient) Quote(ctx context.Context, instruments []string) (map[string]eventmodels.Quote, error) {
	tracer := otel.Tracer("KiteClient")
	ctx, span := tracer.Start(ctx, "Quote")
	defer span.End()

	span.SetAttributes(attribute.StringSlice("instruments", instruments))

	q := url.Values{}
	for _, i := range instruments {
		q.Add("i", i)
	}

	var dto eventmodels.KiteQuoteResponseDTO
	if err := c.get(ctx, "/quote?"+q.Encode(), &dto); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("KiteClient.Quote: %w", err)
	}

	quotes := make(map[string]eventmodels.Quote, len(dto.Data))
	for key, quoteDTO := range dto.Data {
		quote, err := quoteDTO.ToQuote()
		if err != nil {
			return nil, fmt.Errorf("KiteClient.Quote: %s: %w", key, err)
		}

		quotes[key] = quote
	}

	return quotes, nil
}

// HistoricalDaily returns daily candles between from and to, inclusive.
func (c *KiteClient) HistoricalDaily(ctx context.Context, member eventmodels.SectorMember, from, to eventmodels.TradingDay) ([]eventmodels.HistoricalBar, error) {
	tracer := otel.Tracer("KiteClient")
	ctx, span := tracer.Start(ctx, "HistoricalDaily")
	defer span.End()

	span.SetAttributes(attribute.String("symbol", member.Symbol), attribute.Int64("instrument_token", int64(member.InstrumentToken)))

	q := url.Values{}
	q.Set("from", from.String())
	q.Set("to", to.String())

	path := fmt.Sprintf("/instruments/historical/%d/day?%s", member.InstrumentToken, q.Encode())

	var dto eventmodels.KiteHistoricalResponseDTO
	if err := c.get(ctx, path, &dto); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("KiteClient.HistoricalDaily: %w", err)
	}

	bars, err := dto.ToHistoricalBars(member.InstrumentToken, member.Symbol)
	if err != nil {
		return nil, fmt.Errorf("KiteClient.HistoricalDaily: %w", err)
	}

	return bars, nil
}

func (c *KiteClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Kite-Version", "3")
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.apiKey, c.accessToken))

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &HTTPStatusError{StatusCode: res.StatusCode, Status: res.Status}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}

	return nil
}
