package handler

import (
	"log/slog"
	"net/http"

	"idfbuilder/internal/capabilities"
	"idfbuilder/internal/config"
	"idfbuilder/internal/httputil"
)

// ModelsHandler describes the generation providers the server can use
type ModelsHandler struct {
	config   *config.Config
	logger   *slog.Logger
	registry *capabilities.Registry
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(cfg *config.Config, logger *slog.Logger, registry *capabilities.Registry) *ModelsHandler {
	return &ModelsHandler{
		config:   cfg,
		logger:   logger,
		registry: registry,
	}
}

// RoleResponse is the provider and model serving one generation role
type RoleResponse struct {
	Provider string                          `json:"provider"`
	Model    string                          `json:"model"`
	Known    bool                            `json:"known"` // listed in the catalog
	Details  *capabilities.ModelCapabilities `json:"details,omitempty"`
}

// ProvidersResponse is the body of GET /api/models/providers
type ProvidersResponse struct {
	Providers []capabilities.ProviderCapabilities `json:"providers"`
	Document  RoleResponse                        `json:"document"`
	Field     RoleResponse                        `json:"field"`
}

// GetProviders returns the configured providers and the model serving
// each generation role
// GET /api/models/providers
func (h *ModelsHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	providers := []capabilities.ProviderCapabilities{}
	for _, p := range h.registry.Providers() {
		if h.config.HasCredentials(p.Provider) {
			providers = append(providers, p)
		}
	}

	httputil.RespondJSON(w, http.StatusOK, ProvidersResponse{
		Providers: providers,
		Document:  h.role(h.config.DocumentProvider, h.config.DocumentModel),
		Field:     h.role(h.config.FieldProvider, h.config.FieldModel),
	})
}

func (h *ModelsHandler) role(provider, model string) RoleResponse {
	resp := RoleResponse{Provider: provider, Model: model}
	details, err := h.registry.GetModelCapabilities(provider, model)
	if err != nil {
		h.logger.Debug("model not in catalog", "provider", provider, "model", model)
		return resp
	}
	resp.Known = true
	resp.Details = details
	return resp
}
