package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"stock_valuation/pkg/core/alphavantage"
	"stock_valuation/pkg/core/narrative"
	"stock_valuation/pkg/core/normalize"
	"stock_valuation/pkg/core/store"
	"stock_valuation/pkg/core/valuation"

	"github.com/joho/godotenv"
)

func main() {
	var (
		ticker      = flag.String("ticker", "", "Stock ticker to value (e.g. AAPL)")
		policyName  = flag.String("policy", "all_years", "P/E policy: all_years, last_3, last_5, last_10, custom")
		customPE    = flag.Float64("pe", 0, "Custom P/E multiple (with -policy custom)")
		withSummary = flag.Bool("summary", false, "Also fetch growth-initiative commentary")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	if *ticker == "" {
		log.Fatal("Error: -ticker is required.")
	}

	policy, err := valuation.ParsePEPolicy(*policyName)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	client, err := alphavantage.NewClient(alphavantage.Config{
		APIKey: os.Getenv("ALPHAVANTAGE_API_KEY"),
		Cache:  store.NewQuoteCache(nil, ""),
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx := context.Background()

	fmt.Printf("Fetching EPS and price history for %s...\n", *ticker)
	records, prices := fetchSeries(ctx, client, *ticker)

	rows := valuation.JoinByYear(records, prices)
	pe, err := valuation.EstimatePE(rows, policy, *customPE)
	if errors.Is(err, valuation.ErrInsufficientData) {
		fmt.Println("Not enough data to calculate fair value.")
	} else if err != nil {
		log.Fatalf("Error: %v", err)
	} else {
		rows = valuation.ApplyFairValue(rows, pe)
		printTable(rows, pe)
	}

	printDCF(records)

	if *withSummary {
		mgr := narrative.NewManager(narrative.Config{ActiveProvider: "openai"})
		summary := narrative.NewSummarizer(mgr).GrowthInitiatives(ctx, *ticker)
		fmt.Println("\nGrowth Initiatives:")
		fmt.Println(summary)
	}
}

func fetchSeries(ctx context.Context, client *alphavantage.Client, ticker string) ([]normalize.AnnualRecord, []normalize.AnnualPrice) {
	var records []normalize.AnnualRecord
	var prices []normalize.AnnualPrice

	earnings, err := client.Earnings(ctx, ticker)
	if err != nil {
		fmt.Printf("Warning: earnings unavailable: %v\n", err)
	} else if records, err = normalize.Earnings(earnings); err != nil {
		fmt.Printf("Warning: earnings unavailable: %v\n", err)
	}

	series, err := client.MonthlySeries(ctx, ticker)
	if err != nil {
		fmt.Printf("Warning: prices unavailable: %v\n", err)
	} else if prices, err = normalize.Prices(series); err != nil {
		fmt.Printf("Warning: prices unavailable: %v\n", err)
	}

	return records, prices
}

func printTable(rows []valuation.ValuationRow, pe float64) {
	fmt.Printf("\nP/E Multiple Used: %.2f\n", pe)
	fmt.Printf("%-6s %10s %12s %10s %12s\n", "Year", "EPS", "Price", "P/E", "Fair Value")
	for _, row := range rows {
		fmt.Printf("%-6d %10.2f %12.2f %10.2f %12.2f\n",
			row.Year, row.ReportedEPS, row.AdjustedClose, row.PERatio, row.FairValue)
	}
}

func printDCF(records []normalize.AnnualRecord) {
	latestEPS, ok := valuation.LatestEPS(records)
	if !ok {
		fmt.Println("\nNo EPS history available for DCF.")
		return
	}

	assumptions := valuation.DefaultDCFAssumptions()
	result, err := valuation.CalculateDCF(latestEPS, assumptions)
	if err != nil {
		fmt.Printf("\nDCF not available: %v\n", err)
		return
	}

	fmt.Printf("\nDCF Intrinsic Value (wacc=%.0f%%, growth=%.0f%%, terminal=%.0f%%, %d years):\n",
		assumptions.WACC*100, assumptions.EPSGrowth*100, assumptions.TerminalGrowth*100, assumptions.ProjectionYears)
	fmt.Printf("  Projected EPS:   %v\n", formatSeries(result.ProjectedEPS))
	fmt.Printf("  Terminal value:  %.2f\n", result.TerminalValue)
	fmt.Printf("  Intrinsic value: %.2f per share\n", result.IntrinsicValue)
}

func formatSeries(values []float64) string {
	out := "["
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%.2f", v)
	}
	return out + "]"
}
