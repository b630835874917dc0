package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const providerName = "fmp"

var (
	ErrNotConfigured  = errors.New("FMP API key not configured")
	ErrTickerNotFound = errors.New("stock ticker not found")
)

// UpstreamError is returned when FMP answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("FMP returned HTTP %d", e.StatusCode)
}

// Quote is the latest traded price for a symbol.
type Quote struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}

type quoteShort struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// Client wraps the Financial Modeling Prep REST API.
type Client struct {
	BaseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewClient builds a client. An empty apiKey yields a client whose calls
// fail with ErrNotConfigured. requestsPerSec <= 0 disables throttling.
func NewClient(baseURL, apiKey string, requestsPerSec float64, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	limit := rate.Inf
	burst := 0
	if requestsPerSec > 0 {
		limit = rate.Limit(requestsPerSec)
		burst = max(1, int(requestsPerSec))
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

// Price fetches the short quote for ticker.
func (c *Client) Price(ctx context.Context, ticker string) (*Quote, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	path := "/quote-short/" + url.PathEscape(ticker)
	var quotes []quoteShort
	if err := c.get(ctx, path, &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrTickerNotFound
	}

	return &Quote{Ticker: quotes[0].Symbol, Price: quotes[0].Price}, nil
}

func (c *Client) get(ctx context.Context, path string, out *[]quoteShort) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	u := c.BaseURL + path + "?apikey=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	LogRequest(c.log, providerName, http.MethodGet, path)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		LogError(c.log, providerName, path, err)
		return fmt.Errorf("fmp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		LogResponse(c.log, providerName, resp.StatusCode, time.Since(start), 0)
		return &UpstreamError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		LogError(c.log, providerName, path, err)
		return fmt.Errorf("decoding fmp response: %w", err)
	}

	LogResponse(c.log, providerName, resp.StatusCode, time.Since(start), len(*out))
	return nil
}
