// Package capabilities is the catalog of generation providers and the
// models each one offers, loaded from embedded YAML.
package capabilities

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// providerOrder is the order providers are listed in.
var providerOrder = []string{"openai", "perplexity", "openrouter", "anthropic", "lorem"}

// Registry holds the catalog.
type Registry struct {
	providers map[string]*ProviderCapabilities
	mu        sync.RWMutex
}

// NewRegistry loads the embedded provider files.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		providers: make(map[string]*ProviderCapabilities),
	}
	for _, provider := range providerOrder {
		if err := r.loadProviderFile(provider); err != nil {
			return nil, fmt.Errorf("failed to load %s capabilities: %w", provider, err)
		}
	}
	return r, nil
}

func (r *Registry) loadProviderFile(provider string) error {
	filename := fmt.Sprintf("config/%s.yaml", provider)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	if caps.Provider != provider {
		return fmt.Errorf("%s declares provider %q", filename, caps.Provider)
	}

	r.mu.Lock()
	r.providers[provider] = &caps
	r.mu.Unlock()
	return nil
}

// Providers returns every provider in catalog order.
func (r *Registry) Providers() []ProviderCapabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderCapabilities, 0, len(providerOrder))
	for _, name := range providerOrder {
		if p, ok := r.providers[name]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// GetModelCapabilities returns the catalog entry for a model. Models not in
// the catalog can still be configured; they are just not described.
func (r *Registry) GetModelCapabilities(provider, model string) (*ModelCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	for i := range caps.Models {
		if caps.Models[i].ID == model {
			return &caps.Models[i], nil
		}
	}
	return nil, fmt.Errorf("unknown model %s for provider %s", model, provider)
}
