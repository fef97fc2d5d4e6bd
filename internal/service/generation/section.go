package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/domain/services"
	domainllm "idfbuilder/internal/domain/services/llm"
	"idfbuilder/internal/service/extract"
)

// SectionGenerator regenerates single form fields.
type SectionGenerator struct {
	gen     domainllm.TextGenerator
	prompts *PromptCatalog
	logger  *slog.Logger
}

// NewSectionGenerator creates a section generator over the field
// collaborator.
func NewSectionGenerator(gen domainllm.TextGenerator, prompts *PromptCatalog, logger *slog.Logger) *SectionGenerator {
	return &SectionGenerator{
		gen:     gen,
		prompts: prompts,
		logger:  logger,
	}
}

// RegenerateField asks the collaborator for one field and merges the
// normalized answer into the session document.
//
// Nothing happens while the invention description is empty. The field is
// marked as updating for the duration of the call, and a second request for
// the same field is rejected with a conflict until the first returns.
func (g *SectionGenerator) RegenerateField(ctx context.Context, s *idf.Session, req *services.RegenerateFieldRequest) (*idf.FieldUpdate, error) {
	field, kind, err := g.validateRequest(req)
	if err != nil {
		return &idf.FieldUpdate{Field: field, Document: s.Document()}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc := s.Document()
	description := doc.Invention.Description
	if description == "" {
		g.logger.Debug("field regeneration skipped, no description", "field", field)
		return &idf.FieldUpdate{Field: field, Document: doc}, nil
	}

	if !s.BeginField(field) {
		return &idf.FieldUpdate{Field: field, Document: doc}, &domain.ConflictError{
			Message:  fmt.Sprintf("field %s is already being generated", field),
			Resource: string(field),
		}
	}
	defer s.EndField(field)

	prompt := g.prompts.FieldPrompt(field, description, doc.Invention.Keywords, req.URLs)

	start := time.Now()
	raw, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		g.logger.Error("field generation failed",
			"field", field,
			"provider", g.gen.Name(),
			"error", err,
		)
		return &idf.FieldUpdate{Field: field, Document: s.Document()}, fmt.Errorf("regenerate %s: %w", field, err)
	}

	value := extract.Extract(raw, kind)
	update := &idf.FieldUpdate{Field: field, Result: value.String()}

	next, err := s.Update(func(d *idf.Document) error {
		applied, err := mergeField(d, field, value)
		update.Applied = applied
		return err
	})
	update.Document = next
	if err != nil {
		g.logger.Warn("field answer not applied",
			"field", field,
			"provider", g.gen.Name(),
			"error", err,
		)
		return update, fmt.Errorf("regenerate %s: %w", field, err)
	}

	g.logger.Info("field regenerated",
		"field", field,
		"provider", g.gen.Name(),
		"applied", update.Applied,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return update, nil
}

func (g *SectionGenerator) validateRequest(req *services.RegenerateFieldRequest) (idf.FieldName, extract.Kind, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Field, validation.Required),
		validation.Field(&req.URLs,
			validation.Length(0, config.MaxReferenceURLs),
			validation.Each(validation.Required, is.URL),
		),
	); err != nil {
		return idf.FieldName(req.Field), extract.Scalar, err
	}

	field, err := idf.ParseFieldName(req.Field)
	if err != nil {
		return idf.FieldName(req.Field), extract.Scalar, err
	}
	kind, ok := g.prompts.Kind(field)
	if !ok {
		return field, extract.Scalar, fmt.Errorf("field %s cannot be regenerated", field)
	}
	return field, kind, nil
}

// mergeField writes value into field. It reports false when the answer was
// deliberately discarded.
func mergeField(d *idf.Document, field idf.FieldName, value extract.Value) (bool, error) {
	switch {
	case field.IsTableSection():
		if err := decodeTable(d, field, value.Text); err != nil {
			return false, err
		}
		return true, nil
	case field == idf.FieldAdditionalData:
		if !meaningful(value.Text) {
			return false, nil
		}
		return true, d.SetText(field, value.Text)
	case value.Kind == extract.CommaList:
		return true, d.SetList(field, value.Items)
	default:
		return true, d.SetText(field, value.Text)
	}
}

func decodeTable(d *idf.Document, field idf.FieldName, text string) error {
	switch field {
	case idf.FieldPriorArt:
		var rows []idf.PriorArtItem
		if err := extract.DecodeRecords(text, &rows); err != nil {
			return err
		}
		d.PriorArt = rows
	case idf.FieldDisclosure:
		var rows []idf.DisclosureItem
		if err := extract.DecodeRecords(text, &rows); err != nil {
			return err
		}
		d.Disclosure = rows
	case idf.FieldPlans:
		var rows []idf.PublicationPlan
		if err := extract.DecodeRecords(text, &rows); err != nil {
			return err
		}
		d.Plans = rows
	}
	return nil
}

// emptyAnswers are model replies that mean "nothing to add".
var emptyAnswers = map[string]struct{}{
	"":                             {},
	"null":                         {},
	"undefined":                    {},
	"none":                         {},
	"n/a":                          {},
	"no additional data":           {},
	"no additional data available": {},
}

// meaningful reports whether an additional data answer carries content.
// Matching ignores case and one trailing period.
func meaningful(answer string) bool {
	key := strings.ToLower(strings.TrimSpace(answer))
	key = strings.TrimSpace(strings.TrimSuffix(key, "."))
	_, empty := emptyAnswers[key]
	return !empty
}
