// Package normalize turns raw provider payloads into uniform per-fiscal-year
// series ready for joining: annual reported EPS and annual year-end close.
package normalize

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"stock_valuation/pkg/core/alphavantage"
)

// ErrNoData means the payload was missing, empty, or lacked the expected
// top-level field. Downstream shows a warning instead of failing the request.
var ErrNoData = errors.New("normalize: no data in payload")

// AnnualRecord is one fiscal year's reported EPS. Unique per year.
type AnnualRecord struct {
	FiscalYear  int
	ReportedEPS float64
}

// AnnualPrice is one fiscal year's representative close: the latest-dated
// monthly observation within that year.
type AnnualPrice struct {
	FiscalYear    int
	AdjustedClose float64
}

const dateLayout = "2006-01-02"

// Earnings converts the raw EARNINGS payload into a year-ascending EPS
// series. Records with unparseable dates, non-numeric EPS, or non-positive
// EPS are dropped: a non-positive EPS cannot support a P/E ratio, so it is
// excluded rather than clamped. When several records land in the same fiscal
// year, the one with the latest period-end date wins.
func Earnings(payload *alphavantage.EarningsPayload) ([]AnnualRecord, error) {
	if payload == nil || len(payload.AnnualEarnings) == 0 {
		return nil, ErrNoData
	}

	type candidate struct {
		date time.Time
		eps  float64
	}
	byYear := make(map[int]candidate)

	for _, raw := range payload.AnnualEarnings {
		date, err := time.Parse(dateLayout, raw.FiscalDateEnding)
		if err != nil {
			continue
		}
		eps, err := strconv.ParseFloat(raw.ReportedEPS, 64)
		if err != nil || eps <= 0 {
			continue
		}
		year := date.Year()
		if prev, ok := byYear[year]; ok && !date.After(prev.date) {
			continue
		}
		byYear[year] = candidate{date: date, eps: eps}
	}

	if len(byYear) == 0 {
		return nil, ErrNoData
	}

	records := make([]AnnualRecord, 0, len(byYear))
	for year, c := range byYear {
		records = append(records, AnnualRecord{FiscalYear: year, ReportedEPS: c.eps})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].FiscalYear < records[j].FiscalYear })
	return records, nil
}

// Prices converts the raw monthly adjusted series into a year-ascending
// series of year-end closes: within each year, the latest-dated month wins.
func Prices(payload *alphavantage.MonthlySeriesPayload) ([]AnnualPrice, error) {
	if payload == nil || len(payload.Monthly) == 0 {
		return nil, ErrNoData
	}

	type candidate struct {
		date  time.Time
		close float64
	}
	byYear := make(map[int]candidate)

	for dateStr, bar := range payload.Monthly {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}
		adjClose, err := strconv.ParseFloat(bar.AdjustedClose, 64)
		if err != nil {
			continue
		}
		year := date.Year()
		if prev, ok := byYear[year]; ok && !date.After(prev.date) {
			continue
		}
		byYear[year] = candidate{date: date, close: adjClose}
	}

	if len(byYear) == 0 {
		return nil, ErrNoData
	}

	prices := make([]AnnualPrice, 0, len(byYear))
	for year, c := range byYear {
		prices = append(prices, AnnualPrice{FiscalYear: year, AdjustedClose: c.close})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].FiscalYear < prices[j].FiscalYear })
	return prices, nil
}
