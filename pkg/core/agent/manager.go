// Package agent fills cells the deterministic pipeline left blank by asking
// a language model to locate or derive them from the raw company facts.
package agent

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"quarterly_financials/pkg/core/llm"

	"gopkg.in/yaml.v2"
)

// AgentFiller is the agent type used by Filler when resolving its provider.
const AgentFiller = "filler"

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

// LoadConfig reads a models.yaml file. A missing file yields the default config.
func LoadConfig(path string) (Config, error) {
	cfg := Config{ActiveProvider: "gemini"}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read agent config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse agent config %s: %w", path, err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = "gemini"
	}
	return cfg, nil
}

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":         &llm.GeminiProvider{},
			"gemini-classic": &llm.GeminiClassicProvider{},
			"deepseek":       &llm.DeepSeekProvider{},
		},
	}
}

// RegisterProvider adds or replaces a provider by name.
func (m *Manager) RegisterProvider(name string, p llm.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
}

func (m *Manager) GetProvider(agentType string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[m.resolve(agentType)]
}

// resolve picks the provider name for an agent type. Callers hold m.mu.
func (m *Manager) resolve(agentType string) string {
	// 1. Check for agent-specific override
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if _, ok := m.providers[agentConfig.Provider]; ok {
			return agentConfig.Provider
		}
	}

	// 2. Use global active provider
	if _, ok := m.providers[m.config.ActiveProvider]; ok {
		return m.config.ActiveProvider
	}

	// 3. Fallback
	return "gemini"
}

// Options returns provider options configured for an agent type.
// A model is only sent together with the provider it was configured for;
// when the agent falls back to the global provider that provider's default
// model is used.
func (m *Manager) Options(agentType string) map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	opts := map[string]interface{}{}
	agentConfig, ok := m.config.Agents[agentType]
	if !ok || agentConfig.Model == "" || agentConfig.Provider == "" {
		return opts
	}
	if _, registered := m.providers[agentConfig.Provider]; registered {
		opts[llm.OptionModel] = agentConfig.Model
	}
	return opts
}

// SetAgentProvider pins one agent type to a provider. A model configured
// for a different provider is dropped.
func (m *Manager) SetAgentProvider(agentType, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[provider]; !ok {
		return fmt.Errorf("provider %s not found", provider)
	}
	if m.config.Agents == nil {
		m.config.Agents = make(map[string]AgentConfig)
	}
	agentConfig := m.config.Agents[agentType]
	if agentConfig.Provider != provider {
		agentConfig.Model = ""
	}
	agentConfig.Provider = provider
	m.config.Agents[agentType] = agentConfig
	log.Printf("[Agent] %s provider set to: %s", agentType, provider)
	return nil
}

// ResolvedProvider returns the provider name GetProvider would use for agentType.
func (m *Manager) ResolvedProvider(agentType string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolve(agentType)
}

// ExecutePrompt handles instruction adaptation before sending to the model
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(agentType)
	if provider == nil {
		return "", fmt.Errorf("no provider available for agent %s", agentType)
	}

	log.Printf("[Agent] ExecutePrompt: agentType=%s, provider=%T", agentType, provider)

	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	log.Printf("[Agent] Global provider set to: %s", newProvider)
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Available lists registered provider names.
func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AgentTypes lists the configured agent types, always including the filler.
func (m *Manager) AgentTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := []string{AgentFiller}
	for name := range m.config.Agents {
		if name != AgentFiller {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
