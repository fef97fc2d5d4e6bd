// Package generation fills form sections through the language model
// collaborators and merges the normalized answers into a session.
package generation

import (
	"fmt"
	"log/slog"

	domainllm "idfbuilder/internal/domain/services/llm"
)

// Generators bundles the two generation services built from one prompt
// catalog.
type Generators struct {
	Section *SectionGenerator
	Bulk    *BulkGenerator
}

// Setup loads the embedded prompts and wires both generators.
func Setup(gens *domainllm.Generators, logger *slog.Logger) (*Generators, error) {
	prompts, err := LoadPrompts()
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	return &Generators{
		Section: NewSectionGenerator(gens.Field, prompts, logger),
		Bulk:    NewBulkGenerator(gens.Document, prompts, logger),
	}, nil
}
