package valuation_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apivaluation "stock_valuation/pkg/api/valuation"
	"stock_valuation/pkg/core/alphavantage"
	"stock_valuation/pkg/core/valuation"
)

const earningsBody = `{
	"symbol": "AAPL",
	"annualEarnings": [
		{"fiscalDateEnding": "2023-09-30", "reportedEPS": "6.13"},
		{"fiscalDateEnding": "2022-09-30", "reportedEPS": "6.11"},
		{"fiscalDateEnding": "2021-09-30", "reportedEPS": "5.61"}
	]
}`

const monthlyBody = `{
	"Monthly Adjusted Time Series": {
		"2023-12-29": {"5. adjusted close": "192.53"},
		"2022-12-30": {"5. adjusted close": "129.93"},
		"2021-12-31": {"5. adjusted close": "177.57"}
	}
}`

func setupHandler(t *testing.T, responses map[string]string) {
	t.Helper()
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Query().Get("function")]
		if !ok {
			http.Error(w, "unexpected function", http.StatusBadRequest)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(provider.Close)

	client, err := alphavantage.NewClient(alphavantage.Config{
		APIKey:  "test-key",
		BaseURL: provider.URL,
	})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	apivaluation.InitHandler(client, nil)
}

func postReport(t *testing.T, reqBody string) (*httptest.ResponseRecorder, apivaluation.ReportResponse) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/valuation/report", bytes.NewBufferString(reqBody))
	rec := httptest.NewRecorder()
	apivaluation.HandleReport(rec, req)

	var resp apivaluation.ReportResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, resp
}

func TestHandleReport_FullReport(t *testing.T) {
	setupHandler(t, map[string]string{
		alphavantage.FunctionEarnings:        earningsBody,
		alphavantage.FunctionMonthlyAdjusted: monthlyBody,
	})

	rec, resp := postReport(t, `{"ticker": "aapl", "pe_policy": "all_years"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	if resp.Ticker != "AAPL" {
		t.Errorf("ticker not uppercased: %q", resp.Ticker)
	}
	if resp.RequestID == "" {
		t.Error("missing request id")
	}
	if resp.AxisScale != "linear" {
		t.Errorf("axis scale default: got %q", resp.AxisScale)
	}
	if len(resp.Rows) != 3 {
		t.Fatalf("expected 3 joined rows, got %d: %+v", len(resp.Rows), resp.Rows)
	}
	if resp.SelectedPE <= 0 {
		t.Errorf("selected pe: got %v", resp.SelectedPE)
	}
	for _, row := range resp.Rows {
		exp := row.ReportedEPS * resp.SelectedPE
		if math.Abs(row.FairValue-exp) > 1e-9 {
			t.Errorf("year %d: fair value %v, exp %v", row.Year, row.FairValue, exp)
		}
	}
	if resp.DCF == nil {
		t.Fatal("expected a DCF block")
	}
	if resp.DCF.IntrinsicValue <= 0 {
		t.Errorf("intrinsic value: got %v", resp.DCF.IntrinsicValue)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", resp.Warnings)
	}
}

func TestHandleReport_CustomPE(t *testing.T) {
	setupHandler(t, map[string]string{
		alphavantage.FunctionEarnings:        earningsBody,
		alphavantage.FunctionMonthlyAdjusted: monthlyBody,
	})

	rec, resp := postReport(t, `{"ticker": "AAPL", "pe_policy": "custom", "custom_pe": 25}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if resp.SelectedPE != 25 {
		t.Errorf("selected pe: got %v, exp 25", resp.SelectedPE)
	}
}

func TestHandleReport_RateLimitedProvider(t *testing.T) {
	setupHandler(t, map[string]string{
		alphavantage.FunctionEarnings:        `{"Note": "rate limited"}`,
		alphavantage.FunctionMonthlyAdjusted: `{"Note": "rate limited"}`,
	})

	rec, resp := postReport(t, `{"ticker": "AAPL"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("missing data must degrade, not fail: status %d", rec.Code)
	}
	if len(resp.Rows) != 0 || resp.DCF != nil {
		t.Errorf("expected empty report, got rows=%d dcf=%v", len(resp.Rows), resp.DCF)
	}
	if len(resp.Warnings) == 0 {
		t.Fatal("expected warnings for unavailable data")
	}
	joined := strings.Join(resp.Warnings, " | ")
	if !strings.Contains(joined, "could not be retrieved") {
		t.Errorf("warnings missing retrieval notice: %v", resp.Warnings)
	}
	if !strings.Contains(joined, "Not enough data to calculate fair value.") {
		t.Errorf("warnings missing insufficient-data notice: %v", resp.Warnings)
	}
}

func TestHandleReport_InvalidAssumptionFlagged(t *testing.T) {
	setupHandler(t, map[string]string{
		alphavantage.FunctionEarnings:        earningsBody,
		alphavantage.FunctionMonthlyAdjusted: monthlyBody,
	})

	body := `{"ticker": "AAPL", "assumptions": {"wacc": 0.03, "terminal_growth": 0.05, "eps_growth": 0.05, "projection_years": 5}}`
	rec, resp := postReport(t, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if resp.DCF != nil {
		t.Error("DCF block must be absent under invalid assumptions")
	}
	found := false
	for _, warning := range resp.Warnings {
		if strings.Contains(warning, "discount rate must exceed terminal growth") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected invalid-assumption warning, got %v", resp.Warnings)
	}
}

func TestHandleReport_WACCInputsDeriveDiscountRate(t *testing.T) {
	setupHandler(t, map[string]string{
		alphavantage.FunctionEarnings:        earningsBody,
		alphavantage.FunctionMonthlyAdjusted: monthlyBody,
	})

	// CAPM + Hamada over these inputs gives wacc = 0.0875.
	body := `{"ticker": "AAPL", "wacc_inputs": {
		"unlevered_beta": 1.0,
		"risk_free_rate": 0.04,
		"market_risk_premium": 0.05,
		"pretax_cost_of_debt": 0.06,
		"tax_rate": 0.25,
		"debt_to_equity": 0.5
	}}`
	rec, resp := postReport(t, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Assumptions == nil {
		t.Fatal("expected assumptions echo")
	}
	if math.Abs(resp.Assumptions.WACC-0.0875) > 1e-9 {
		t.Errorf("derived wacc: got %v, exp 0.0875", resp.Assumptions.WACC)
	}
	if resp.DCF == nil || resp.DCF.IntrinsicValue <= 0 {
		t.Fatalf("expected a DCF block under the derived rate, got %+v", resp.DCF)
	}
}

func TestHandleReport_DerivedWACCBelowTerminalGrowthFlagged(t *testing.T) {
	setupHandler(t, map[string]string{
		alphavantage.FunctionEarnings:        earningsBody,
		alphavantage.FunctionMonthlyAdjusted: monthlyBody,
	})

	// Zero beta and premium collapse the derived rate to 1%, below the 3%
	// default terminal growth.
	body := `{"ticker": "AAPL", "wacc_inputs": {"risk_free_rate": 0.01}}`
	rec, resp := postReport(t, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if resp.DCF != nil {
		t.Error("DCF block must be absent when the derived rate is below terminal growth")
	}
	found := false
	for _, warning := range resp.Warnings {
		if strings.Contains(warning, "discount rate must exceed terminal growth") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected invalid-assumption warning, got %v", resp.Warnings)
	}
}

func TestHandleReport_BadInputs(t *testing.T) {
	setupHandler(t, map[string]string{
		alphavantage.FunctionEarnings:        earningsBody,
		alphavantage.FunctionMonthlyAdjusted: monthlyBody,
	})

	cases := []struct {
		name string
		body string
	}{
		{"missing ticker", `{"pe_policy": "all_years"}`},
		{"unknown policy", `{"ticker": "AAPL", "pe_policy": "median"}`},
		{"unknown axis scale", `{"ticker": "AAPL", "axis_scale": "cubic"}`},
		{"negative custom pe", `{"ticker": "AAPL", "pe_policy": "custom", "custom_pe": -5}`},
		{"malformed json", `{"ticker": `},
	}
	for _, tc := range cases {
		rec, _ := postReport(t, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, exp 400", tc.name, rec.Code)
		}
	}
}

func TestHandleReport_LogScalePassthrough(t *testing.T) {
	setupHandler(t, map[string]string{
		alphavantage.FunctionEarnings:        earningsBody,
		alphavantage.FunctionMonthlyAdjusted: monthlyBody,
	})

	rec, resp := postReport(t, `{"ticker": "AAPL", "axis_scale": "log"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if resp.AxisScale != "log" {
		t.Errorf("axis scale: got %q, exp log", resp.AxisScale)
	}
}

// Keeps the wire shape stable for the frontend.
func TestReportRowJSONShape(t *testing.T) {
	row := valuation.ValuationRow{Year: 2023, ReportedEPS: 6.13, AdjustedClose: 192.53, PERatio: 31.4, FairValue: 153.25}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{"year", "reported_eps", "adjusted_close", "pe_ratio", "fair_value"} {
		if !strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("row JSON missing %q: %s", key, data)
		}
	}
}
