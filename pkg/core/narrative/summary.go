package narrative

import (
	"context"
	"fmt"
	"strings"

	"stock_valuation/pkg/core/utils"
)

// FallbackSummary is returned whenever the provider fails. It must stay
// fixed: the frontend keys off this exact string to dim the panel.
const FallbackSummary = "Could not fetch growth initiatives."

const summarySystemPrompt = "You are a helpful financial analyst."

const taskGrowthSummary = "growth_summary"

// Summarizer fetches growth-initiative commentary through a Manager.
type Summarizer struct {
	mgr *Manager
}

func NewSummarizer(mgr *Manager) *Summarizer {
	return &Summarizer{mgr: mgr}
}

// bulletDoc is the lenient JSON shape requested from the model.
type bulletDoc struct {
	Bullets []string `json:"bullets"`
}

// GrowthInitiatives returns bullet-style growth commentary for a ticker.
// Provider errors are logged and collapse to FallbackSummary; this call can
// never fail a valuation request.
func (s *Summarizer) GrowthInitiatives(ctx context.Context, ticker string) string {
	prompt := fmt.Sprintf(
		"Research and summarize the stated growth initiatives and timeline for the company associated with the stock ticker %s. "+
			"Respond as JSON: {\"bullets\": [\"...\"]}. Keep it concise.",
		ticker,
	)

	raw, err := s.mgr.ExecutePrompt(ctx, taskGrowthSummary, prompt, summarySystemPrompt, map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		fmt.Printf("[WARNING] Narrative fetch failed for %s: %v\n", ticker, err)
		return FallbackSummary
	}

	// Models drift from the requested shape; recover leniently before
	// falling back to the raw text.
	var doc bulletDoc
	if _, err := utils.SmartParse(raw, &doc); err == nil && len(doc.Bullets) > 0 {
		var b strings.Builder
		for _, bullet := range doc.Bullets {
			b.WriteString("- ")
			b.WriteString(strings.TrimSpace(bullet))
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}

	cleaned := utils.CleanMarkdown(raw)
	if cleaned == "" {
		return FallbackSummary
	}
	return cleaned
}
