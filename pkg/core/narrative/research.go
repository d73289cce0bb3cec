package narrative

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ResearchAgent holds a long-lived Gemini client for open-ended company
// research. Unlike the stateless providers it keeps the client open so a
// batch of tickers does not re-handshake per request. For answers grounded
// in live search results, use GeminiProvider with the google_search option;
// this SDK exposes no retrieval tool yet.
type ResearchAgent struct {
	modelName string
	client    *genai.Client
}

// NewResearchAgent creates the agent from the GEMINI_API_KEY env var.
func NewResearchAgent(ctx context.Context) (*ResearchAgent, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &ResearchAgent{
		modelName: "gemini-2.0-flash-exp",
		client:    client,
	}, nil
}

// Research sends the prompt and returns the text plus whatever citation URIs
// the model volunteers; without a retrieval tool these are often empty.
func (a *ResearchAgent) Research(ctx context.Context, systemPrompt, prompt string) (string, []string, error) {
	model := a.client.GenerativeModel(a.modelName)
	model.SetTemperature(0.5)

	fullPrompt := fmt.Sprintf("%s\n\nTask: %s", systemPrompt, prompt)

	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return "", nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil, fmt.Errorf("empty response from model")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}

	var sources []string
	if meta := resp.Candidates[0].CitationMetadata; meta != nil {
		for _, cs := range meta.CitationSources {
			if cs.URI != nil {
				sources = append(sources, *cs.URI)
			}
		}
	}

	return text, sources, nil
}

// Close releases the underlying client.
func (a *ResearchAgent) Close() error {
	return a.client.Close()
}
