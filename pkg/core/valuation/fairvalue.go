// Package valuation holds the pure valuation math: realized P/E history,
// policy-selected P/E multiples, EPS-based fair value, DCF intrinsic value,
// and cost-of-capital estimation. No I/O, no hidden state.
package valuation

import (
	"errors"

	"stock_valuation/pkg/core/normalize"
)

// ErrInsufficientData means the joined or filtered series is empty or too
// short for the requested computation. Surfaced as a non-fatal message.
var ErrInsufficientData = errors.New("valuation: insufficient data")

// ValuationRow is one year of the aligned EPS/price/fair-value table.
// PERatio is the realized multiple for that year; FairValue is the row's EPS
// scaled by one policy-selected multiple shared across all rows.
type ValuationRow struct {
	Year          int     `json:"year"`
	ReportedEPS   float64 `json:"reported_eps"`
	AdjustedClose float64 `json:"adjusted_close"`
	PERatio       float64 `json:"pe_ratio"`
	FairValue     float64 `json:"fair_value"`
}

// JoinByYear inner-joins the EPS and price series on fiscal year, ascending,
// and computes each row's realized P/E. Years present in only one series are
// dropped; nothing else is.
func JoinByYear(eps []normalize.AnnualRecord, prices []normalize.AnnualPrice) []ValuationRow {
	closeByYear := make(map[int]float64, len(prices))
	for _, p := range prices {
		closeByYear[p.FiscalYear] = p.AdjustedClose
	}

	rows := make([]ValuationRow, 0, len(eps))
	for _, rec := range eps {
		adjClose, ok := closeByYear[rec.FiscalYear]
		if !ok {
			continue
		}
		rows = append(rows, ValuationRow{
			Year:          rec.FiscalYear,
			ReportedEPS:   rec.ReportedEPS,
			AdjustedClose: adjClose,
			PERatio:       adjClose / rec.ReportedEPS,
		})
	}
	return rows
}

// ApplyFairValue returns a copy of rows with FairValue = ReportedEPS * pe.
// The single multiple is broadcast deliberately: the model asks what each
// year's price would have been under one normalized multiple, not what the
// realized multiple was.
func ApplyFairValue(rows []ValuationRow, pe float64) []ValuationRow {
	out := make([]ValuationRow, len(rows))
	for i, row := range rows {
		row.FairValue = row.ReportedEPS * pe
		out[i] = row
	}
	return out
}

// LatestEPS returns the maximum-year record's EPS. The second return is
// false when the series is empty.
func LatestEPS(records []normalize.AnnualRecord) (float64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	latest := records[0]
	for _, rec := range records[1:] {
		if rec.FiscalYear > latest.FiscalYear {
			latest = rec
		}
	}
	return latest.ReportedEPS, true
}
