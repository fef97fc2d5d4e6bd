package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/models/idf"
	domainllm "idfbuilder/internal/domain/services/llm"
	"idfbuilder/internal/service/extract"
)

// BulkGenerator fills a whole form in one call to the document
// collaborator.
type BulkGenerator struct {
	gen     domainllm.TextGenerator
	prompts *PromptCatalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewBulkGenerator creates a bulk generator over the document collaborator.
func NewBulkGenerator(gen domainllm.TextGenerator, prompts *PromptCatalog, logger *slog.Logger) *BulkGenerator {
	return &BulkGenerator{
		gen:     gen,
		prompts: prompts,
		logger:  logger,
		now:     time.Now,
	}
}

// GenerateAll replaces the session document with a generated one. An empty
// seed title falls back to the invention description. Uploaded images of
// the current document always survive; whatever the model says about
// images is dropped.
func (g *BulkGenerator) GenerateAll(ctx context.Context, s *idf.Session, seedTitle string) (idf.Document, error) {
	doc := s.Document()

	seed := strings.TrimSpace(seedTitle)
	if utf8.RuneCountInString(seed) > config.MaxSeedTitleLength {
		return doc, fmt.Errorf("%w: title must be at most %d characters", domain.ErrValidation, config.MaxSeedTitleLength)
	}
	if seed == "" {
		seed = strings.TrimSpace(doc.Invention.Description)
	}
	if seed == "" {
		return doc, &domain.ValidationError{Message: "a title or an invention description is required"}
	}

	if !s.BeginLoading() {
		return doc, &domain.ConflictError{Message: "document generation already in progress", Resource: "document"}
	}
	defer s.EndLoading()

	prompt := g.prompts.DocumentPrompt(seed, g.now().UTC().Format(time.RFC3339))

	start := time.Now()
	raw, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		g.logger.Error("document generation failed",
			"provider", g.gen.Name(),
			"error", err,
		)
		return s.Document(), fmt.Errorf("generate document: %w", err)
	}

	generated, err := decodeDocument(raw)
	if err != nil {
		g.logger.Warn("document answer not applied",
			"provider", g.gen.Name(),
			"error", err,
		)
		return s.Document(), fmt.Errorf("generate document: %w", err)
	}

	next, err := s.Update(func(d *idf.Document) error {
		images := append([]string{}, d.Invention.UploadedImages...)
		*d = generated
		d.Invention.UploadedImages = images
		return nil
	})
	if err != nil {
		return next, err
	}

	g.logger.Info("document generated",
		"provider", g.gen.Name(),
		"images_kept", len(next.Invention.UploadedImages),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return next, nil
}

// documentKeys are the top-level sections of a form answer.
var documentKeys = map[string]struct{}{
	"date":       {},
	"title":      {},
	"abstract":   {},
	"inventors":  {},
	"invention":  {},
	"prior_art":  {},
	"disclosure": {},
	"plans":      {},
}

// decodeDocument parses a whole-form answer. The answer must be a JSON
// object carrying at least one non-null form section; anything else would
// replace the form with an empty one.
func decodeDocument(raw string) (idf.Document, error) {
	text := []byte(extract.ObjectText(raw))

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(text, &sections); err != nil {
		return idf.Document{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	found := false
	for key, value := range sections {
		if _, ok := documentKeys[strings.ToLower(key)]; ok && string(bytes.TrimSpace(value)) != "null" {
			found = true
			break
		}
	}
	if !found {
		return idf.Document{}, fmt.Errorf("%w: answer has no form sections", domain.ErrMalformedResponse)
	}

	var doc idf.Document
	if err := json.Unmarshal(text, &doc); err != nil {
		return idf.Document{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return doc, nil
}
