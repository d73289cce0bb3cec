package valuation

import (
	"fmt"
)

// PEPolicy selects how the scalar P/E multiple is derived from the realized
// per-year history.
type PEPolicy string

const (
	PEPolicyAllYears PEPolicy = "all_years"
	PEPolicyLast3    PEPolicy = "last_3"
	PEPolicyLast5    PEPolicy = "last_5"
	PEPolicyLast10   PEPolicy = "last_10"
	PEPolicyCustom   PEPolicy = "custom"
)

// ParsePEPolicy validates a policy name from the presentation layer.
func ParsePEPolicy(name string) (PEPolicy, error) {
	switch PEPolicy(name) {
	case PEPolicyAllYears, PEPolicyLast3, PEPolicyLast5, PEPolicyLast10, PEPolicyCustom:
		return PEPolicy(name), nil
	case "":
		return PEPolicyAllYears, nil
	}
	return "", fmt.Errorf("unknown pe policy %q", name)
}

// EstimatePE computes the scalar P/E multiple for a policy over rows ordered
// by year ascending.
//
// Trailing policies average the final N realized multiples; when fewer than N
// rows exist they degrade to averaging whatever is available. The custom
// policy ignores the history entirely and returns the caller's override,
// which must be >= 0. An empty history under a trailing policy yields
// ErrInsufficientData so a mean of zero elements never reaches the chart.
func EstimatePE(rows []ValuationRow, policy PEPolicy, custom float64) (float64, error) {
	if policy == PEPolicyCustom {
		if custom < 0 {
			return 0, fmt.Errorf("custom pe must be >= 0, got %v", custom)
		}
		return custom, nil
	}

	if len(rows) == 0 {
		return 0, ErrInsufficientData
	}

	window := len(rows)
	switch policy {
	case PEPolicyLast3:
		window = 3
	case PEPolicyLast5:
		window = 5
	case PEPolicyLast10:
		window = 10
	case PEPolicyAllYears:
		// full history
	default:
		return 0, fmt.Errorf("unknown pe policy %q", policy)
	}
	if window > len(rows) {
		window = len(rows)
	}

	var sum float64
	for _, row := range rows[len(rows)-window:] {
		sum += row.PERatio
	}
	return sum / float64(window), nil
}
