package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultFinnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubClient fetches quotes from the Finnhub quote endpoint.
type FinnhubClient struct {
	cli     *http.Client
	baseURL string
	apiKey  string
}

// NewFinnhubClient creates a Finnhub-backed provider. The timeout bounds each
// request even when the caller's context carries no deadline of its own.
func NewFinnhubClient(apiKey string, timeout time.Duration) *FinnhubClient {
	return &FinnhubClient{
		cli:     &http.Client{Timeout: timeout},
		baseURL: defaultFinnhubBaseURL,
		apiKey:  apiKey,
	}
}

// NewFinnhubClientWithBaseURL is like NewFinnhubClient against a custom
// endpoint. Used by tests.
func NewFinnhubClientWithBaseURL(apiKey string, timeout time.Duration, baseURL string) *FinnhubClient {
	c := NewFinnhubClient(apiKey, timeout)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// Quote returns the current price for the symbol.
func (c *FinnhubClient) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("empty symbol: %w", ErrQuoteUnavailable)
	}

	endpoint := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build quote request: %w", err)
	}

	resp, err := c.cli.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quote %s: %w: %v", symbol, ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("quote %s: http %d: %w", symbol, resp.StatusCode, ErrQuoteUnavailable)
	}

	// Finnhub quote payload: "c" is the current price.
	var raw struct {
		Current float64 `json:"c"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("quote %s: decode: %w", symbol, err)
	}
	if raw.Current <= 0 {
		return decimal.Zero, fmt.Errorf("quote %s: no price: %w", symbol, ErrQuoteUnavailable)
	}

	return decimal.NewFromFloat(raw.Current), nil
}
