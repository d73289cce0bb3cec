package valuation

import (
	"errors"
	"math"
)

// DCF sentinel errors. Both are explicit flags: the engine never silently
// returns a nonsensical intrinsic value.
var (
	// ErrInvalidAssumption means wacc <= terminal growth, which makes the
	// Gordon terminal value diverge.
	ErrInvalidAssumption = errors.New("valuation: wacc must exceed terminal growth")
	// ErrCannotValue means the latest reported EPS is non-positive, so an
	// earnings-based projection has nothing to grow.
	ErrCannotValue = errors.New("valuation: cannot value non-positive eps")
)

// DCFAssumptions are the fixed inputs to the projection.
//
// A zero-value field means "unset" and is filled from DefaultDCFAssumptions
// by CalculateDCF: the JSON boundary emits unset fields as zeros, so a 0%
// rate is indistinguishable from an absent one and is not representable.
// Callers that mean "no growth" pass a negligible positive rate.
type DCFAssumptions struct {
	WACC            float64 `json:"wacc"`
	TerminalGrowth  float64 `json:"terminal_growth"`
	EPSGrowth       float64 `json:"eps_growth"`
	ProjectionYears int     `json:"projection_years"`
}

// DefaultDCFAssumptions returns the standing defaults: 10% discount rate,
// 3% terminal growth, 5% EPS growth, 5-year horizon.
func DefaultDCFAssumptions() DCFAssumptions {
	return DCFAssumptions{
		WACC:            0.10,
		TerminalGrowth:  0.03,
		EPSGrowth:       0.05,
		ProjectionYears: 5,
	}
}

// DCFResult holds the intrinsic value and the intermediate arrays so the
// presentation layer can show the projection. Immutable after construction.
type DCFResult struct {
	IntrinsicValue  float64   `json:"intrinsic_value"`
	ProjectedEPS    []float64 `json:"projected_eps"`
	DiscountFactors []float64 `json:"discount_factors"`
	TerminalValue   float64   `json:"terminal_value"`
}

// CalculateDCF projects EPS forward under a fixed growth rate, discounts each
// year at the WACC, capitalizes a Gordon-growth terminal value off the final
// projected year, and sums to a per-share intrinsic value.
//
// Pure function of latestEPS and the assumptions. wacc <= terminal growth is
// rejected with ErrInvalidAssumption; latestEPS <= 0 with ErrCannotValue.
func CalculateDCF(latestEPS float64, a DCFAssumptions) (DCFResult, error) {
	defaults := DefaultDCFAssumptions()
	if a.WACC == 0 {
		a.WACC = defaults.WACC
	}
	if a.TerminalGrowth == 0 {
		a.TerminalGrowth = defaults.TerminalGrowth
	}
	if a.EPSGrowth == 0 {
		a.EPSGrowth = defaults.EPSGrowth
	}
	if a.ProjectionYears <= 0 {
		a.ProjectionYears = defaults.ProjectionYears
	}

	if a.WACC <= a.TerminalGrowth {
		return DCFResult{}, ErrInvalidAssumption
	}
	if latestEPS <= 0 {
		return DCFResult{}, ErrCannotValue
	}

	horizon := a.ProjectionYears
	projected := make([]float64, horizon)
	factors := make([]float64, horizon)

	var pvSum float64
	for i := 1; i <= horizon; i++ {
		eps := latestEPS * math.Pow(1+a.EPSGrowth, float64(i))
		df := 1 / math.Pow(1+a.WACC, float64(i))
		projected[i-1] = eps
		factors[i-1] = df
		pvSum += eps * df
	}

	terminal := projected[horizon-1] * (1 + a.TerminalGrowth) / (a.WACC - a.TerminalGrowth)
	intrinsic := pvSum + terminal*factors[horizon-1]

	return DCFResult{
		IntrinsicValue:  intrinsic,
		ProjectedEPS:    projected,
		DiscountFactors: factors,
		TerminalValue:   terminal,
	}, nil
}
