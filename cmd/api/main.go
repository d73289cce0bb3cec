package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	apiconfig "stock_valuation/pkg/api/config"
	apinarrative "stock_valuation/pkg/api/narrative"
	apivaluation "stock_valuation/pkg/api/valuation"
	"stock_valuation/pkg/core/alphavantage"
	"stock_valuation/pkg/core/growth"
	"stock_valuation/pkg/core/narrative"
	"stock_valuation/pkg/core/store"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

func main() {
	// Load environment variables
	godotenv.Load()

	ctx := context.Background()

	// Payload cache: DB primary when DATABASE_URL is set, file fallback otherwise
	var cache *store.QuoteCache
	if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[WARNING] Database unavailable, using file cache: %v\n", err)
		cache = store.NewQuoteCache(nil, "")
	} else {
		cache = store.NewQuoteCache(store.GetPool(), "")
		defer store.Close()
	}

	avClient, err := alphavantage.NewClient(alphavantage.Config{
		APIKey: os.Getenv("ALPHAVANTAGE_API_KEY"),
		Cache:  cache,
	})
	if err != nil {
		fmt.Printf("[FATAL] Alpha Vantage client: %v\n", err)
		os.Exit(1)
	}

	// Narrative provider config
	var narrativeCfg narrative.Config
	configData, err := os.ReadFile("config/models.yaml")
	if err != nil {
		fmt.Printf("[WARNING] config/models.yaml not found, defaulting to openai: %v\n", err)
	} else if err := yaml.Unmarshal(configData, &narrativeCfg); err != nil {
		fmt.Printf("[WARNING] Failed to parse config/models.yaml: %v\n", err)
	}
	if narrativeCfg.ActiveProvider == "" {
		narrativeCfg.ActiveProvider = "openai"
	}
	mgr := narrative.NewManager(narrativeCfg)

	// Valuation endpoints
	apivaluation.InitHandler(avClient, growth.NewFetcher())
	http.HandleFunc("/api/valuation/report", apivaluation.HandleReport)

	// Narrative endpoints
	apinarrative.InitHandler(narrative.NewSummarizer(mgr))
	http.HandleFunc("/api/narrative/growth", apinarrative.HandleGrowth)

	if agent, err := narrative.NewResearchAgent(ctx); err != nil {
		fmt.Printf("[WARNING] Research agent disabled: %v\n", err)
	} else {
		defer agent.Close()
		apinarrative.InitResearch(agent)
	}
	http.HandleFunc("/api/narrative/research", apinarrative.HandleResearch)

	// Config endpoints
	configHandler := apiconfig.NewHandler(mgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - POST /api/valuation/report")
	fmt.Println("  - POST /api/narrative/growth")
	fmt.Println("  - POST /api/narrative/research")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
