// Package alphavantage implements the Alpha Vantage query API client used to
// fetch company fundamentals and price history by ticker.
//
// The free tier rate-limits aggressively and signals it inside an HTTP 200
// body ("Note"/"Information" fields), so sentinel detection happens on every
// payload before it is handed to callers.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// ErrDataUnavailable marks payloads that came back syntactically fine but
// carry no usable data: rate-limit notices and explicit provider errors.
// Callers surface this as a warning, not a failure.
var ErrDataUnavailable = errors.New("alphavantage: no usable data")

// PayloadCache stores raw provider payloads keyed by ticker and function.
// A nil cache disables caching entirely.
type PayloadCache interface {
	Get(ctx context.Context, ticker, function string) ([]byte, error)
	Save(ctx context.Context, ticker, function string, payload []byte) error
}

// Config carries everything the client needs. The API key is passed in
// explicitly; the client never reads process globals.
type Config struct {
	APIKey     string
	BaseURL    string       // optional, defaults to the public endpoint
	HTTPClient *http.Client // optional
	Cache      PayloadCache // optional
}

// Client queries the Alpha Vantage API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   PayloadCache
}

// NewClient builds a client from Config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("alphavantage: API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  httpClient,
		cache:   cfg.Cache,
	}, nil
}

// Earnings fetches the annual EPS history for a ticker.
func (c *Client) Earnings(ctx context.Context, ticker string) (*EarningsPayload, error) {
	body, err := c.query(ctx, FunctionEarnings, ticker)
	if err != nil {
		return nil, err
	}
	var payload EarningsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode earnings payload: %w", err)
	}
	return &payload, nil
}

// MonthlySeries fetches the monthly adjusted price series for a ticker.
func (c *Client) MonthlySeries(ctx context.Context, ticker string) (*MonthlySeriesPayload, error) {
	body, err := c.query(ctx, FunctionMonthlyAdjusted, ticker)
	if err != nil {
		return nil, err
	}
	var payload MonthlySeriesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode monthly series payload: %w", err)
	}
	return &payload, nil
}

// CompanyOverview fetches the OVERVIEW report.
func (c *Client) CompanyOverview(ctx context.Context, ticker string) (*Overview, error) {
	body, err := c.query(ctx, FunctionOverview, ticker)
	if err != nil {
		return nil, err
	}
	var payload Overview
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode overview payload: %w", err)
	}
	return &payload, nil
}

// IncomeStatement fetches the annual income statements.
func (c *Client) IncomeStatement(ctx context.Context, ticker string) (*FinancialReport, error) {
	return c.financialReport(ctx, FunctionIncomeStatement, ticker)
}

// BalanceSheet fetches the annual balance sheets.
func (c *Client) BalanceSheet(ctx context.Context, ticker string) (*FinancialReport, error) {
	return c.financialReport(ctx, FunctionBalanceSheet, ticker)
}

// CashFlow fetches the annual cash flow statements.
func (c *Client) CashFlow(ctx context.Context, ticker string) (*FinancialReport, error) {
	return c.financialReport(ctx, FunctionCashFlow, ticker)
}

func (c *Client) financialReport(ctx context.Context, function, ticker string) (*FinancialReport, error) {
	body, err := c.query(ctx, function, ticker)
	if err != nil {
		return nil, err
	}
	var payload FinancialReport
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", function, err)
	}
	return &payload, nil
}

// query performs one GET against the provider, checking the cache first and
// scanning the body for sentinel conditions before returning it.
func (c *Client) query(ctx context.Context, function, ticker string) ([]byte, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, ticker, function)
		if err == nil && cached != nil {
			fmt.Printf("[CACHE] HIT %s %s\n", ticker, function)
			return cached, nil
		}
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("function", function)
	q.Set("symbol", ticker)
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s for %s: %w", function, ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage returned status %d for %s", resp.StatusCode, function)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := checkSentinels(body); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Save(ctx, ticker, function, body); err != nil {
			fmt.Printf("[WARNING] Failed to cache %s %s: %v\n", ticker, function, err)
		}
	}

	return body, nil
}

// sentinelKeys are top-level fields the provider uses to report rate limits
// ("Note", "Information") and invalid requests ("Error Message") inside a
// 200 response.
var sentinelKeys = []string{"Note", "Information", "Error Message"}

func checkSentinels(body []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return fmt.Errorf("failed to parse provider response: %w", err)
	}
	for _, key := range sentinelKeys {
		raw, ok := probe[key]
		if !ok {
			continue
		}
		var msg string
		json.Unmarshal(raw, &msg)
		return fmt.Errorf("%w: %s: %s", ErrDataUnavailable, key, msg)
	}
	return nil
}
