package narrative

import (
	"context"
	"fmt"
)

// Config is loaded from YAML (config/models.yaml).
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Tasks          map[string]TaskConfig `yaml:"tasks"`
}

// TaskConfig optionally pins a task ("growth_summary") to a provider.
type TaskConfig struct {
	Provider    string `yaml:"provider"`
	Description string `yaml:"description"`
}

// Manager routes narrative tasks to the configured provider.
type Manager struct {
	config    Config
	providers map[string]Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]Provider{
			"openai":   &OpenAIProvider{},
			"gemini":   &GeminiProvider{},
			"deepseek": &DeepSeekProvider{},
		},
	}
}

// GetProvider resolves the provider for a task: per-task override first,
// then the global active provider, then openai.
func (m *Manager) GetProvider(task string) Provider {
	if taskConfig, ok := m.config.Tasks[task]; ok && taskConfig.Provider != "" {
		if p, ok := m.providers[taskConfig.Provider]; ok {
			return p
		}
	}

	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}

	return m.providers["openai"]
}

// ExecutePrompt adapts the system prompt for the chosen model and runs it.
func (m *Manager) ExecutePrompt(ctx context.Context, task string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(task)
	adapted := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adapted, options)
}

// SetGlobalProvider switches the active provider at runtime.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.config.ActiveProvider = name
	fmt.Printf("[NARRATIVE] Global provider set to: %s\n", name)
	return nil
}

func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}

// Available lists the registered provider names.
func (m *Manager) Available() []string {
	return []string{"openai", "gemini", "deepseek"}
}
