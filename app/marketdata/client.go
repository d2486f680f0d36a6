package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 15 * time.Second

// Quote is one OHLCV bar from the market data service.
type Quote struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Client talks to an external quote-history service. Price data is garnish on
// top of the sentiment views, so every failure degrades to an empty slice
// instead of an error.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// History fetches OHLCV bars for a symbol over [start, end] at the given
// interval (e.g. "1D"). An unconfigured base URL or any fetch failure yields
// an empty slice.
func (c *Client) History(ctx context.Context, symbol string, start, end time.Time, interval string) []Quote {
	if c.baseURL == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/history?%s", c.baseURL, url.Values{
		"symbol":   {symbol},
		"start":    {start.Format("2006-01-02")},
		"end":      {end.Format("2006-01-02")},
		"interval": {interval},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Warn("Failed to create quote request", "symbol", symbol, "error", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Failed to fetch quote history", "symbol", symbol, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Quote service returned error", "symbol", symbol, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("Failed to read quote response", "symbol", symbol, "error", err)
		return nil
	}

	var quotes []Quote
	if err := json.Unmarshal(body, &quotes); err != nil {
		slog.Warn("Failed to decode quote response", "symbol", symbol, "error", err)
		return nil
	}

	return quotes
}
