package generation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/service/extract"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// RegenerableFields lists the fields a single-field regeneration accepts,
// in form order. The date and inventors are only ever filled by bulk
// generation or by hand.
var RegenerableFields = []idf.FieldName{
	idf.FieldTitle, idf.FieldAbstract,
	idf.FieldDescription, idf.FieldKeywords, idf.FieldBackground, idf.FieldProblem,
	idf.FieldComponents, idf.FieldAdvantages, idf.FieldAdditionalData, idf.FieldResults,
	idf.FieldPriorArt, idf.FieldDisclosure, idf.FieldPlans,
}

// PromptCatalog holds the prompt templates and per-field instructions.
type PromptCatalog struct {
	Document promptTemplate         `yaml:"document"`
	Field    promptTemplate         `yaml:"field"`
	Fields   map[string]fieldPrompt `yaml:"fields"`
	kinds    map[idf.FieldName]extract.Kind
}

type promptTemplate struct {
	Template string `yaml:"template"`
}

type fieldPrompt struct {
	Kind        string `yaml:"kind"`
	Instruction string `yaml:"instruction"`
}

// LoadPrompts parses the embedded catalog.
func LoadPrompts() (*PromptCatalog, error) {
	return ParsePrompts(defaultPrompts)
}

// ParsePrompts parses a catalog and checks that every regenerable field has
// an instruction and a known kind.
func ParsePrompts(data []byte) (*PromptCatalog, error) {
	var c PromptCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if strings.TrimSpace(c.Document.Template) == "" {
		return nil, fmt.Errorf("prompts: document template is empty")
	}
	if strings.TrimSpace(c.Field.Template) == "" {
		return nil, fmt.Errorf("prompts: field template is empty")
	}

	c.kinds = make(map[idf.FieldName]extract.Kind, len(RegenerableFields))
	for _, f := range RegenerableFields {
		fp, ok := c.Fields[string(f)]
		if !ok || strings.TrimSpace(fp.Instruction) == "" {
			return nil, fmt.Errorf("prompts: no instruction for field %s", f)
		}
		kind, err := extract.ParseKind(fp.Kind)
		if err != nil {
			return nil, fmt.Errorf("prompts: field %s: %w", f, err)
		}
		c.kinds[f] = kind
	}
	return &c, nil
}

// Kind returns how the answer for f is normalized.
func (c *PromptCatalog) Kind(f idf.FieldName) (extract.Kind, bool) {
	kind, ok := c.kinds[f]
	return kind, ok
}

// DocumentPrompt builds the whole-form prompt. today is embedded verbatim.
func (c *PromptCatalog) DocumentPrompt(subject, today string) string {
	r := strings.NewReplacer(
		"{{subject}}", subject,
		"{{today}}", today,
	)
	return strings.TrimSpace(r.Replace(c.Document.Template))
}

// FieldPrompt builds the prompt for one field. The subject is the
// invention description and keywords give the context. Reference URLs are
// appended as a JSON array.
func (c *PromptCatalog) FieldPrompt(f idf.FieldName, subject string, keywords idf.StringList, urls []string) string {
	references := ""
	if len(urls) > 0 {
		data, _ := json.Marshal(urls) // []string always marshals
		references = "Get data from " + string(data)
	}

	r := strings.NewReplacer(
		"{{field}}", string(f),
		"{{subject}}", subject,
		"{{keywords}}", keywords.String(),
		"{{instruction}}", c.Fields[string(f)].Instruction,
		"{{references}}", references,
	)
	return strings.TrimSpace(r.Replace(c.Field.Template))
}
