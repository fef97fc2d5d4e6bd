package llm

import (
	"fmt"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"
	"github.com/haowjy/meridian-llm-go/providers/openrouter"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain"
	domainllm "idfbuilder/internal/domain/services/llm"
)

// ProviderFactory creates text generators from configuration
type ProviderFactory struct {
	config *config.Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
	}
}

// GetGenerator returns a generator for the given provider name and model.
//
// Supported providers:
//   - "openai" - chat completions at OPENAI_BASE_URL
//   - "perplexity" - chat completions at PERPLEXITY_BASE_URL, browses the web
//   - "openrouter" - any OpenRouter model
//   - "anthropic" - Claude models via Anthropic API
//   - "lorem" - Mock provider for testing (no API key required)
//
// Missing API keys are reported as domain.ErrUpstreamUnavailable.
func (f *ProviderFactory) GetGenerator(providerName, model string) (domainllm.TextGenerator, error) {
	timeout := f.config.LLMTimeout

	switch providerName {
	case config.ProviderOpenAI:
		if f.config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY environment variable not set", domain.ErrUpstreamUnavailable)
		}
		return NewChatCompletionsClient(providerName, f.config.OpenAIAPIKey, f.config.OpenAIBaseURL, model, timeout), nil

	case config.ProviderPerplexity:
		if f.config.PerplexityAPIKey == "" {
			return nil, fmt.Errorf("%w: PERPLEXITY_API_KEY environment variable not set", domain.ErrUpstreamUnavailable)
		}
		return NewChatCompletionsClient(providerName, f.config.PerplexityAPIKey, f.config.PerplexityBaseURL, model, timeout), nil

	case config.ProviderOpenRouter, config.ProviderAnthropic, config.ProviderLorem:
		provider, err := f.GetProvider(providerName)
		if err != nil {
			return nil, err
		}
		return NewProviderGenerator(provider, model, timeout), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// GetProvider returns a meridian-llm-go provider instance
func (f *ProviderFactory) GetProvider(providerName string) (llmprovider.Provider, error) {
	switch providerName {
	case config.ProviderAnthropic:
		return f.createAnthropicProvider()
	case config.ProviderOpenRouter:
		return f.createOpenRouterProvider()
	case config.ProviderLorem:
		return f.createLoremProvider()
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func (f *ProviderFactory) createAnthropicProvider() (llmprovider.Provider, error) {
	if f.config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY environment variable not set", domain.ErrUpstreamUnavailable)
	}

	provider, err := anthropic.NewProvider(f.config.AnthropicAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}
	return provider, nil
}

func (f *ProviderFactory) createOpenRouterProvider() (llmprovider.Provider, error) {
	if f.config.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("%w: OPENROUTER_API_KEY environment variable not set", domain.ErrUpstreamUnavailable)
	}

	provider, err := openrouter.NewProvider(f.config.OpenRouterAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenRouter provider: %w", err)
	}
	return provider, nil
}

// createLoremProvider creates a Lorem mock provider instance
// Lorem requires no API key - it generates lorem ipsum text
func (f *ProviderFactory) createLoremProvider() (llmprovider.Provider, error) {
	return lorem.NewProvider(), nil
}
