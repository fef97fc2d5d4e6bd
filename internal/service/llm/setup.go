package llm

import (
	"fmt"
	"log/slog"

	"idfbuilder/internal/config"
	domainllm "idfbuilder/internal/domain/services/llm"
)

// SetupGenerators builds the document and field generators from config.
// A role whose provider cannot be configured gets an Unavailable generator,
// so the server still starts and only that generation path fails.
// An unknown provider name is a configuration error.
func SetupGenerators(cfg *config.Config, logger *slog.Logger) (*domainllm.Generators, error) {
	factory := NewProviderFactory(cfg)

	document, err := setupRole(factory, cfg.DocumentProvider, cfg.DocumentModel, config.RoleDocument, logger)
	if err != nil {
		return nil, err
	}
	field, err := setupRole(factory, cfg.FieldProvider, cfg.FieldModel, config.RoleField, logger)
	if err != nil {
		return nil, err
	}

	return &domainllm.Generators{Document: document, Field: field}, nil
}

func setupRole(factory *ProviderFactory, provider, model, role string, logger *slog.Logger) (domainllm.TextGenerator, error) {
	gen, err := factory.GetGenerator(provider, model)
	if err == nil {
		logger.Info("provider available", "role", role, "name", provider, "model", model)
		return gen, nil
	}
	if IsUnavailable(err) {
		logger.Warn("provider not available", "role", role, "name", provider, "error", err)
		return NewUnavailable(provider, err), nil
	}
	return nil, fmt.Errorf("%s provider: %w", role, err)
}
