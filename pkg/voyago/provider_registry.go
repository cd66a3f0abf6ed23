package voyago

import (
	"fmt"
	"strings"

	"github.com/arielhakim/voyago/pkg/configutil"
	"github.com/arielhakim/voyago/pkg/errorsx"
	"github.com/arielhakim/voyago/pkg/llm"
	mockllm "github.com/arielhakim/voyago/pkg/providers/mock"
	"github.com/arielhakim/voyago/pkg/providers/openai"
)

type LLMFactory func(settings map[string]any) (llm.LLMAdapter, error)

// ProviderRegistry maps provider names to adapter factories. The built-in
// providers are "openai" (also serves Azure AI Foundry via base_url) and
// "mock" for offline runs and tests.
type ProviderRegistry struct {
	llm map[string]LLMFactory
}

func NewProviderRegistry() *ProviderRegistry {
	r := &ProviderRegistry{llm: make(map[string]LLMFactory)}
	r.RegisterLLM("openai", buildOpenAI)
	r.RegisterLLM("mock", buildMock)
	return r
}

func (r *ProviderRegistry) RegisterLLM(name string, factory LLMFactory) {
	r.llm[strings.ToLower(strings.TrimSpace(name))] = factory
}

func (r *ProviderRegistry) BuildLLM(provider string, settings map[string]any) (llm.LLMAdapter, error) {
	fn := r.llm[strings.ToLower(strings.TrimSpace(provider))]
	if fn == nil {
		return nil, errorsx.Newf(errorsx.ReasonConfig, "llm provider not registered: %s", provider)
	}
	return fn(settings)
}

type openAISettings struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

func buildOpenAI(settings map[string]any) (llm.LLMAdapter, error) {
	var s openAISettings
	if err := configutil.DecodeSettings(settings, &s); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("openai settings: %w", err), errorsx.ReasonConfig)
	}
	if err := configutil.RequireString(s.APIKey, "llm.settings.api_key"); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	if err := configutil.RequireString(s.Model, "llm.settings.model"); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	adapter := openai.NewAdapter(s.APIKey, s.Model)
	if s.BaseURL != "" {
		adapter.BaseURL = strings.TrimRight(s.BaseURL, "/")
	}
	return adapter, nil
}

type mockSettings struct {
	ResponseText string `mapstructure:"response_text"`
}

func buildMock(settings map[string]any) (llm.LLMAdapter, error) {
	var s mockSettings
	if err := configutil.DecodeSettings(settings, &s); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("mock settings: %w", err), errorsx.ReasonConfig)
	}
	return mockllm.NewLLMAdapter(mockllm.LLMConfig{ResponseText: s.ResponseText}), nil
}
