package alphavantage

// Report function names accepted by the provider's query endpoint.
const (
	FunctionOverview        = "OVERVIEW"
	FunctionIncomeStatement = "INCOME_STATEMENT"
	FunctionBalanceSheet    = "BALANCE_SHEET"
	FunctionCashFlow        = "CASH_FLOW"
	FunctionEarnings        = "EARNINGS"
	FunctionMonthlyAdjusted = "TIME_SERIES_MONTHLY_ADJUSTED"
)

// AnnualEarning is one reported fiscal-year EPS record. The provider ships
// every numeric field as a string ("None" included), so coercion happens in
// the normalizer, not here.
type AnnualEarning struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	ReportedEPS      string `json:"reportedEPS"`
}

// EarningsPayload is the EARNINGS response.
type EarningsPayload struct {
	Symbol         string          `json:"symbol"`
	AnnualEarnings []AnnualEarning `json:"annualEarnings"`
}

// MonthlyBar is one month of the adjusted time series. Keys carry the
// provider's numeric prefixes verbatim.
type MonthlyBar struct {
	Open          string `json:"1. open"`
	High          string `json:"2. high"`
	Low           string `json:"3. low"`
	Close         string `json:"4. close"`
	AdjustedClose string `json:"5. adjusted close"`
	Volume        string `json:"6. volume"`
	Dividend      string `json:"7. dividend amount"`
}

// MonthlySeriesPayload is the TIME_SERIES_MONTHLY_ADJUSTED response,
// a map from "YYYY-MM-DD" date strings to bars.
type MonthlySeriesPayload struct {
	MetaData map[string]string     `json:"Meta Data"`
	Monthly  map[string]MonthlyBar `json:"Monthly Adjusted Time Series"`
}

// Overview is the company OVERVIEW response. Only the fields the valuation
// surfaces care about are typed; the provider returns everything as strings.
type Overview struct {
	Symbol             string `json:"Symbol"`
	Name               string `json:"Name"`
	Description        string `json:"Description"`
	Sector             string `json:"Sector"`
	Industry           string `json:"Industry"`
	MarketCap          string `json:"MarketCapitalization"`
	PERatio            string `json:"PERatio"`
	EPS                string `json:"EPS"`
	BookValue          string `json:"BookValue"`
	Beta               string `json:"Beta"`
	SharesOutstanding  string `json:"SharesOutstanding"`
	DividendYield      string `json:"DividendYield"`
	AnalystTargetPrice string `json:"AnalystTargetPrice"`
}

// FinancialReport covers INCOME_STATEMENT, BALANCE_SHEET and CASH_FLOW,
// which all share the annualReports list-of-string-maps shape.
type FinancialReport struct {
	Symbol        string              `json:"symbol"`
	AnnualReports []map[string]string `json:"annualReports"`
}
