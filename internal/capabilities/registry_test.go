package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"idfbuilder/internal/config"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	var names []string
	for _, p := range r.Providers() {
		names = append(names, p.Provider)
		assert.NotEmpty(t, p.Models, p.Provider)
	}
	assert.Equal(t, []string{"openai", "perplexity", "openrouter", "anthropic", "lorem"}, names)
}

func TestRegistry_DefaultModelsAreCataloged(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	for _, provider := range []string{
		config.ProviderOpenAI, config.ProviderPerplexity, config.ProviderOpenRouter,
		config.ProviderAnthropic, config.ProviderLorem,
	} {
		for _, role := range []string{config.RoleDocument, config.RoleField} {
			model := config.DefaultModel(provider, role)
			_, err := r.GetModelCapabilities(provider, model)
			assert.NoError(t, err, "%s/%s", provider, role)
		}
	}
}

func TestRegistry_GetModelCapabilities(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	m, err := r.GetModelCapabilities("perplexity", "sonar-pro")
	require.NoError(t, err)
	assert.True(t, m.WebSearch)
	assert.Equal(t, "sonar-pro", m.ID)

	_, err = r.GetModelCapabilities("perplexity", "nope")
	assert.Error(t, err)
	_, err = r.GetModelCapabilities("nope", "sonar-pro")
	assert.Error(t, err)
}

func TestProviderCapabilities_KeepsModelOrder(t *testing.T) {
	data := []byte(`
provider: test
display_name: Test
models:
  zeta:
    display_name: Z
  alpha:
    display_name: A
`)
	var p ProviderCapabilities
	require.NoError(t, yaml.Unmarshal(data, &p))

	require.Len(t, p.Models, 2)
	assert.Equal(t, "zeta", p.Models[0].ID)
	assert.Equal(t, "alpha", p.Models[1].ID)
	assert.Equal(t, "Test", p.DisplayName)
}
