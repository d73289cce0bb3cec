// Package valuation exposes the fair-value report endpoint consumed by the
// chart/table frontend.
package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"stock_valuation/pkg/core/alphavantage"
	"stock_valuation/pkg/core/growth"
	"stock_valuation/pkg/core/normalize"
	"stock_valuation/pkg/core/valuation"

	"github.com/google/uuid"
)

var avClient *alphavantage.Client
var growthFetcher *growth.Fetcher

// InitHandler wires the handler's collaborators. growthFetcher may be nil to
// disable consensus-growth lookups.
func InitHandler(client *alphavantage.Client, fetcher *growth.Fetcher) {
	avClient = client
	growthFetcher = fetcher
}

// ReportRequest is the frontend's valuation request. pe_policy and
// axis_scale take the enumerated values; custom_pe only applies under the
// "custom" policy. wacc_inputs, when present, derives the DCF discount rate
// from fundamentals instead of the 10% default.
type ReportRequest struct {
	Ticker             string                    `json:"ticker"`
	PEPolicy           string                    `json:"pe_policy"`
	CustomPE           float64                   `json:"custom_pe"`
	AxisScale          string                    `json:"axis_scale"`
	UseConsensusGrowth bool                      `json:"use_consensus_growth"`
	Assumptions        *valuation.DCFAssumptions `json:"assumptions,omitempty"`
	WACCInputs         *valuation.WACCInput      `json:"wacc_inputs,omitempty"`
}

// ReportResponse carries the aligned rows, the scalar multiple, the DCF
// block, and non-fatal warnings. Missing data never 500s: the rows or the
// DCF block are simply absent and a warning names the reason.
type ReportResponse struct {
	RequestID   string                    `json:"request_id"`
	Ticker      string                    `json:"ticker"`
	Rows        []valuation.ValuationRow  `json:"rows,omitempty"`
	SelectedPE  float64                   `json:"selected_pe,omitempty"`
	PEPolicy    string                    `json:"pe_policy"`
	AxisScale   string                    `json:"axis_scale"`
	DCF         *valuation.DCFResult      `json:"dcf,omitempty"`
	Assumptions *valuation.DCFAssumptions `json:"assumptions,omitempty"`
	Warnings    []string                  `json:"warnings,omitempty"`
}

func HandleReport(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	policy, err := valuation.ParsePEPolicy(req.PEPolicy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	axisScale := req.AxisScale
	switch axisScale {
	case "":
		axisScale = "linear"
	case "linear", "log":
	default:
		http.Error(w, fmt.Sprintf("unknown axis_scale %q", req.AxisScale), http.StatusBadRequest)
		return
	}

	requestID := uuid.New().String()
	fmt.Printf("[VALUATION] %s Request: %s policy=%s scale=%s\n", requestID, ticker, policy, axisScale)

	resp := ReportResponse{
		RequestID: requestID,
		Ticker:    ticker,
		PEPolicy:  string(policy),
		AxisScale: axisScale,
	}

	ctx := r.Context()
	records, prices := fetchSeries(ctx, ticker, &resp)

	rows := valuation.JoinByYear(records, prices)
	pe, err := valuation.EstimatePE(rows, policy, req.CustomPE)
	switch {
	case errors.Is(err, valuation.ErrInsufficientData):
		resp.Warnings = append(resp.Warnings, "Not enough data to calculate fair value.")
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	default:
		resp.Rows = valuation.ApplyFairValue(rows, pe)
		resp.SelectedPE = pe
	}

	applyDCF(ctx, &req, &resp, records)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// fetchSeries pulls both provider payloads and normalizes them. Provider
// sentinels and empty payloads degrade to empty series plus a warning.
func fetchSeries(ctx context.Context, ticker string, resp *ReportResponse) ([]normalize.AnnualRecord, []normalize.AnnualPrice) {
	var records []normalize.AnnualRecord
	var prices []normalize.AnnualPrice

	earnings, err := avClient.Earnings(ctx, ticker)
	if err != nil {
		resp.Warnings = append(resp.Warnings, warningFor("earnings", err))
	} else if records, err = normalize.Earnings(earnings); err != nil {
		resp.Warnings = append(resp.Warnings, warningFor("earnings", err))
	}

	series, err := avClient.MonthlySeries(ctx, ticker)
	if err != nil {
		resp.Warnings = append(resp.Warnings, warningFor("prices", err))
	} else if prices, err = normalize.Prices(series); err != nil {
		resp.Warnings = append(resp.Warnings, warningFor("prices", err))
	}

	return records, prices
}

func warningFor(series string, err error) string {
	if errors.Is(err, alphavantage.ErrDataUnavailable) || errors.Is(err, normalize.ErrNoData) {
		return fmt.Sprintf("Some %s data could not be retrieved. Please verify the ticker or API status.", series)
	}
	return fmt.Sprintf("Failed to load %s data: %v", series, err)
}

// applyDCF runs the independent intrinsic-value computation off the latest
// reported EPS. Invalid assumptions are flagged, never returned as numbers.
func applyDCF(ctx context.Context, req *ReportRequest, resp *ReportResponse, records []normalize.AnnualRecord) {
	latestEPS, ok := valuation.LatestEPS(records)
	if !ok {
		resp.Warnings = append(resp.Warnings, "No EPS history available for DCF.")
		return
	}

	assumptions := valuation.DefaultDCFAssumptions()
	if req.Assumptions != nil {
		assumptions = *req.Assumptions
	}

	// A fundamentals-derived discount rate takes precedence over the default
	// and over any literal wacc in the assumptions block.
	if req.WACCInputs != nil {
		assumptions.WACC = valuation.EstimateWACC(*req.WACCInputs).WACC
	}

	if req.UseConsensusGrowth && growthFetcher != nil {
		rate, err := growthFetcher.Consensus(ctx, resp.Ticker)
		if err != nil {
			fmt.Printf("[WARNING] Consensus growth lookup failed for %s: %v\n", resp.Ticker, err)
		}
		assumptions.EPSGrowth = rate
	}

	result, err := valuation.CalculateDCF(latestEPS, assumptions)
	switch {
	case errors.Is(err, valuation.ErrInvalidAssumption):
		resp.Warnings = append(resp.Warnings, "Invalid DCF assumption: discount rate must exceed terminal growth.")
	case errors.Is(err, valuation.ErrCannotValue):
		resp.Warnings = append(resp.Warnings, "Latest reported EPS is non-positive; DCF cannot value this company.")
	case err != nil:
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("DCF failed: %v", err))
	default:
		resp.DCF = &result
		resp.Assumptions = &assumptions
	}
}
