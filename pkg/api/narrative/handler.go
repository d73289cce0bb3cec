// Package narrative exposes the growth-initiatives summary endpoint.
package narrative

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	corenarrative "stock_valuation/pkg/core/narrative"
	"stock_valuation/pkg/core/utils"

	"github.com/google/uuid"
)

var summarizer *corenarrative.Summarizer
var researchAgent *corenarrative.ResearchAgent

func InitHandler(s *corenarrative.Summarizer) {
	summarizer = s
}

// InitResearch wires the optional research agent. A nil agent leaves the
// research endpoint returning 503.
func InitResearch(agent *corenarrative.ResearchAgent) {
	researchAgent = agent
}

type GrowthRequest struct {
	Ticker string `json:"ticker"`
}

// GrowthResponse carries the summary as Markdown and rendered HTML. Fallback
// is true when the provider failed and the fixed fallback text was used.
type GrowthResponse struct {
	RequestID string `json:"request_id"`
	Ticker    string `json:"ticker"`
	Summary   string `json:"summary"`
	HTML      string `json:"html"`
	Fallback  bool   `json:"fallback"`
}

func HandleGrowth(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req GrowthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	requestID := uuid.New().String()
	fmt.Printf("[NARRATIVE] %s Request: %s\n", requestID, ticker)

	summary := summarizer.GrowthInitiatives(r.Context(), ticker)

	resp := GrowthResponse{
		RequestID: requestID,
		Ticker:    ticker,
		Summary:   summary,
		HTML:      utils.RenderMarkdown(summary),
		Fallback:  summary == corenarrative.FallbackSummary,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type ResearchRequest struct {
	Ticker string `json:"ticker"`
	Query  string `json:"query"`
}

type ResearchResponse struct {
	RequestID string   `json:"request_id"`
	Ticker    string   `json:"ticker"`
	Text      string   `json:"text"`
	Sources   []string `json:"sources,omitempty"`
}

// HandleResearch runs a research prompt for a ticker and returns the text
// plus any citation URIs the model supplied.
func HandleResearch(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if researchAgent == nil {
		http.Error(w, "research agent not configured", http.StatusServiceUnavailable)
		return
	}

	var req ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = fmt.Sprintf("Recent growth initiatives and risks for the company with stock ticker %s.", ticker)
	}

	requestID := uuid.New().String()
	fmt.Printf("[NARRATIVE] %s Research: %s\n", requestID, ticker)

	text, sources, err := researchAgent.Research(r.Context(), "You are a helpful financial analyst.", query)
	if err != nil {
		fmt.Printf("[WARNING] Research failed for %s: %v\n", ticker, err)
		http.Error(w, "research failed", http.StatusBadGateway)
		return
	}

	resp := ResearchResponse{
		RequestID: requestID,
		Ticker:    ticker,
		Text:      text,
		Sources:   sources,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
