package valuation_test

import (
	"testing"

	"stock_valuation/pkg/core/valuation"
)

func TestEstimateWACC(t *testing.T) {
	input := valuation.WACCInput{
		UnleveredBeta:     1.0,
		RiskFreeRate:      0.04,
		MarketRiskPremium: 0.05,
		PreTaxCostOfDebt:  0.06,
		TaxRate:           0.25,
		DebtToEquityRatio: 0.5,
	}

	result := valuation.EstimateWACC(input)

	// BetaL = 1.0 * (1 + 0.75*0.5) = 1.375
	if !almostEqual(result.LeveredBeta, 1.375, 1e-9) {
		t.Errorf("levered beta: got %v, exp 1.375", result.LeveredBeta)
	}
	// Ke = 0.04 + 1.375*0.05 = 0.10875
	if !almostEqual(result.CostOfEquity, 0.10875, 1e-9) {
		t.Errorf("cost of equity: got %v, exp 0.10875", result.CostOfEquity)
	}
	// Kd = 0.06 * 0.75 = 0.045
	if !almostEqual(result.CostOfDebt, 0.045, 1e-9) {
		t.Errorf("cost of debt: got %v, exp 0.045", result.CostOfDebt)
	}
	// Wd = 1/3, We = 2/3
	if !almostEqual(result.WeightDebt, 1.0/3.0, 1e-9) || !almostEqual(result.WeightEquity, 2.0/3.0, 1e-9) {
		t.Errorf("weights: got %v/%v", result.WeightDebt, result.WeightEquity)
	}
	// WACC = 0.10875*(2/3) + 0.045*(1/3) = 0.0875
	if !almostEqual(result.WACC, 0.0875, 1e-9) {
		t.Errorf("wacc: got %v, exp 0.0875", result.WACC)
	}
}

func TestEstimateWACC_NoDebt(t *testing.T) {
	input := valuation.WACCInput{
		UnleveredBeta:     1.2,
		RiskFreeRate:      0.04,
		MarketRiskPremium: 0.05,
		PreTaxCostOfDebt:  0.06,
		TaxRate:           0.21,
	}

	result := valuation.EstimateWACC(input)

	// No leverage: beta stays unlevered, wacc == cost of equity
	if !almostEqual(result.LeveredBeta, 1.2, 1e-9) {
		t.Errorf("levered beta: got %v, exp 1.2", result.LeveredBeta)
	}
	if !almostEqual(result.WACC, result.CostOfEquity, 1e-9) {
		t.Errorf("all-equity wacc %v should equal cost of equity %v", result.WACC, result.CostOfEquity)
	}
	if result.WeightDebt != 0 || result.WeightEquity != 1 {
		t.Errorf("weights: got %v/%v, exp 0/1", result.WeightDebt, result.WeightEquity)
	}
}
