package agent

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"investment_appraisal/pkg/core/llm"
)

// InsightAgent is the agent type used for investment insight generation.
const InsightAgent = "investment_insight"

type Config struct {
	ActiveProvider string                 `yaml:"active_provider" mapstructure:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents" mapstructure:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"` // Optional override
	Model       string `yaml:"model" mapstructure:"model"`       // Optional model override passed to the provider
	Description string `yaml:"description" mapstructure:"description"`
}

// ErrNoProvider is returned when neither the agent nor the global setting resolves.
var ErrNoProvider = eris.New("agent: no provider configured")

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
}

// NewManager wires the given providers by name. A nil map starts with Gemini only.
func NewManager(config Config, providers map[string]llm.Provider) *Manager {
	if providers == nil {
		providers = map[string]llm.Provider{
			"gemini": &llm.GeminiProvider{},
		}
	}
	if config.ActiveProvider == "" {
		config.ActiveProvider = "gemini"
	}
	return &Manager{config: config, providers: providers}
}

// Register adds or replaces a provider.
func (m *Manager) Register(name string, p llm.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
}

// GetProvider resolves the provider for an agent type: agent override first,
// then the global active provider.
func (m *Manager) GetProvider(agentType string) (llm.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p, nil
		}
		zap.L().Warn("agent: override provider not registered, using active provider",
			zap.String("agent", agentType),
			zap.String("provider", agentConfig.Provider),
		)
	}

	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p, nil
	}
	return nil, eris.Wrapf(ErrNoProvider, "agent %q, active %q", agentType, m.config.ActiveProvider)
}

// ExecutePrompt handles instruction adaptation before sending to the model.
// A model configured for the agent is passed along unless the caller set one.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider, err := m.GetProvider(agentType)
	if err != nil {
		return "", err
	}

	opts := make(map[string]interface{}, len(options)+1)
	for k, v := range options {
		opts[k] = v
	}
	m.mu.RLock()
	if ac, ok := m.config.Agents[agentType]; ok && ac.Model != "" {
		if _, set := opts[llm.OptionModel]; !set {
			opts[llm.OptionModel] = ac.Model
		}
	}
	m.mu.RUnlock()

	zap.L().Debug("agent: execute prompt",
		zap.String("agent", agentType),
		zap.String("provider_type", providerType(provider)),
	)
	return provider.GenerateResponse(ctx, rawPrompt, provider.AdaptInstructions(rawSystemPrompt), opts)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return eris.Errorf("agent: provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	zap.L().Info("agent: global provider set", zap.String("provider", newProvider))
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// ProviderNames lists registered providers, sorted.
func (m *Manager) ProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for k := range m.providers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func providerType(p llm.Provider) string {
	switch p.(type) {
	case *llm.GeminiProvider:
		return "gemini"
	case *llm.DeepSeekProvider:
		return "deepseek"
	default:
		return "custom"
	}
}
