// Package growth scrapes consensus analyst EPS-growth estimates to feed the
// DCF growth assumption. Scraping is best-effort: any failure falls back to
// the standing default rather than blocking a valuation.
package growth

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultGrowthRate is used when no consensus estimate can be fetched.
const DefaultGrowthRate = 0.05

// Plausibility bounds for a long-run EPS growth assumption. Estimates
// outside this band are treated as scrape noise and discarded.
const (
	minGrowthRate = 0.0
	maxGrowthRate = 0.30
)

// Fetcher scrapes analyst growth estimates.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
}

// NewFetcher creates a fetcher against the public finviz quote pages.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://finviz.com/quote.ashx",
	}
}

// NewFetcherWithBase overrides the scrape target, used in tests.
func NewFetcherWithBase(baseURL string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{httpClient: client, baseURL: baseURL}
}

// Consensus returns the 5-year EPS growth estimate for a ticker, or
// DefaultGrowthRate with a non-nil error when nothing usable was found.
func (f *Fetcher) Consensus(ctx context.Context, ticker string) (float64, error) {
	url := fmt.Sprintf("%s?t=%s", f.baseURL, ticker)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return DefaultGrowthRate, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return DefaultGrowthRate, fmt.Errorf("failed to fetch growth estimate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DefaultGrowthRate, fmt.Errorf("growth source returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return DefaultGrowthRate, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rate, ok := extractGrowthRate(doc)
	if !ok {
		return DefaultGrowthRate, fmt.Errorf("no growth estimate found for %s", ticker)
	}
	return rate, nil
}

var percentPattern = regexp.MustCompile(`^-?\d+(\.\d+)?%$`)

// extractGrowthRate walks the snapshot table looking for the "EPS next 5Y"
// label and parses the adjacent percentage cell.
func extractGrowthRate(doc *goquery.Document) (float64, bool) {
	var rate float64
	var found bool

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		if found {
			return
		}
		table.Find("tr").Each(func(j int, row *goquery.Selection) {
			if found {
				return
			}
			cells := row.Find("td")
			cells.Each(func(k int, cell *goquery.Selection) {
				if found {
					return
				}
				label := strings.TrimSpace(cell.Text())
				if !strings.EqualFold(label, "EPS next 5Y") {
					return
				}
				value := strings.TrimSpace(cells.Eq(k + 1).Text())
				if !percentPattern.MatchString(value) {
					return
				}
				parsed, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
				if err != nil {
					return
				}
				parsed /= 100
				if parsed < minGrowthRate || parsed > maxGrowthRate {
					return
				}
				rate = parsed
				found = true
			})
		})
	})

	return rate, found
}
