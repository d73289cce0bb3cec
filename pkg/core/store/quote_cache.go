package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QuoteCache stores raw provider payloads so repeat lookups within the same
// month never burn an API call; the free tier allows only a handful per day.
// Hybrid layout: DB (primary) + file system (fallback/local).
//
// Only raw provider payloads are cached, keyed by ticker, report function and
// calendar month. Valuation requests and results are never persisted.
type QuoteCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewQuoteCache creates a cache instance. If pool is nil it falls back to a
// file-based cache in dir; an empty dir defaults to .cache/alphavantage.
func NewQuoteCache(pool *pgxpool.Pool, dir string) *QuoteCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "alphavantage")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check QuoteCache dir: %v\n", err)
		}
	}
	return &QuoteCache{pool: pool, fileDir: dir}
}

// cacheEntry is the file-cache wrapper.
type cacheEntry struct {
	Ticker    string          `json:"ticker"`
	Function  string          `json:"function"`
	MonthKey  string          `json:"month_key"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// monthKey stamps entries with the current calendar month. Fundamentals are
// annual and prices monthly, so a month-granular key keeps data fresh enough.
func monthKey() string {
	return time.Now().UTC().Format("2006-01")
}

// Get returns the cached payload for ticker+function in the current month,
// or nil on a miss. A miss is never an error.
func (c *QuoteCache) Get(ctx context.Context, ticker, function string) ([]byte, error) {
	key := monthKey()

	if c.pool != nil {
		query := `
			SELECT payload
			FROM provider_payloads
			WHERE ticker = $1 AND function = $2 AND month_key = $3
			ORDER BY fetched_at DESC
			LIMIT 1
		`
		var payload []byte
		err := c.pool.QueryRow(ctx, query, ticker, function, key).Scan(&payload)
		if err != nil {
			return nil, nil // cache miss
		}
		return payload, nil
	}

	if c.fileDir != "" {
		data, err := os.ReadFile(c.entryPath(ticker, function, key))
		if err != nil {
			return nil, nil
		}
		var entry cacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, nil
		}
		return entry.Payload, nil
	}

	return nil, nil
}

// Save stores a payload under ticker+function for the current month.
func (c *QuoteCache) Save(ctx context.Context, ticker, function string, payload []byte) error {
	key := monthKey()

	if c.pool != nil {
		query := `
			INSERT INTO provider_payloads (ticker, function, month_key, payload, fetched_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (ticker, function, month_key)
			DO UPDATE SET payload = EXCLUDED.payload, fetched_at = NOW()
		`
		if _, err := c.pool.Exec(ctx, query, ticker, function, key, payload); err != nil {
			return fmt.Errorf("failed to save to db cache: %w", err)
		}
	}

	if c.fileDir != "" {
		entry := cacheEntry{
			Ticker:    ticker,
			Function:  function,
			MonthKey:  key,
			Payload:   json.RawMessage(payload),
			FetchedAt: time.Now(),
		}
		fileBytes, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry: %w", err)
		}
		if err := os.WriteFile(c.entryPath(ticker, function, key), fileBytes, 0644); err != nil {
			return fmt.Errorf("failed to save to file cache: %w", err)
		}
	}

	return nil
}

func (c *QuoteCache) entryPath(ticker, function, key string) string {
	safe := strings.ToUpper(strings.ReplaceAll(ticker, "/", "-"))
	name := fmt.Sprintf("%s_%s_%s.json", safe, function, key)
	return filepath.Join(c.fileDir, name)
}
