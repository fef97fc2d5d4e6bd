package capabilities

import "gopkg.in/yaml.v3"

// ModelCapabilities describes one model a generation role can use.
type ModelCapabilities struct {
	// Model identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// WebSearch means the model reads reference URLs itself, which field
	// regeneration relies on.
	WebSearch bool `yaml:"web_search" json:"web_search"`

	// JSONOutput means the model reliably answers with a bare JSON object,
	// which whole-document generation relies on.
	JSONOutput bool `yaml:"json_output" json:"json_output"`

	ContextWindow int `yaml:"context_window" json:"context_window"`
}

// ProviderCapabilities lists the models of one provider.
type ProviderCapabilities struct {
	Provider    string              `yaml:"provider" json:"id"`
	DisplayName string              `yaml:"display_name" json:"name"`
	APIKeyEnv   string              `yaml:"api_key_env" json:"api_key_env,omitempty"` // empty when no key is needed
	Models      []ModelCapabilities `yaml:"-" json:"models"`                          // YAML order
}

// UnmarshalYAML keeps the models in the order the file lists them.
func (p *ProviderCapabilities) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Provider    string                       `yaml:"provider"`
		DisplayName string                       `yaml:"display_name"`
		APIKeyEnv   string                       `yaml:"api_key_env"`
		Models      map[string]ModelCapabilities `yaml:"models"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	p.Provider = raw.Provider
	p.DisplayName = raw.DisplayName
	p.APIKeyEnv = raw.APIKeyEnv

	// Mapping nodes alternate key, value.
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		models := node.Content[i+1]
		for j := 0; j+1 < len(models.Content); j += 2 {
			id := models.Content[j].Value
			if model, ok := raw.Models[id]; ok {
				model.ID = id
				p.Models = append(p.Models, model)
			}
		}
		break
	}
	return nil
}
