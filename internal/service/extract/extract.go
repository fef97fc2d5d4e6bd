// Package extract normalizes raw language model output into the shapes the
// document model expects. Parsing is best effort: nothing here validates the
// content, and callers treat decode failures as recoverable.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/models/idf"
)

// Kind is the expected shape of a model answer.
type Kind int

const (
	Scalar Kind = iota
	CommaList
	RecordArray
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case CommaList:
		return "comma_list"
	case RecordArray:
		return "record_array"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves the names used in the prompt catalog.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar", "":
		return Scalar, nil
	case "comma_list", "list":
		return CommaList, nil
	case "record_array", "records":
		return RecordArray, nil
	}
	return Scalar, fmt.Errorf("unknown field kind %q", s)
}

// Value is an extracted answer. Text is set for Scalar and RecordArray,
// Items for CommaList.
type Value struct {
	Kind  Kind
	Text  string
	Items []string
}

// String returns the display form of the value.
func (v Value) String() string {
	if v.Kind == CommaList {
		return idf.StringList(v.Items).String()
	}
	return v.Text
}

// Extract normalizes raw according to kind.
func Extract(raw string, kind Kind) Value {
	switch kind {
	case CommaList:
		return Value{Kind: kind, Items: idf.SplitCommaList(raw)}
	case RecordArray:
		return Value{Kind: kind, Text: RecordArrayText(raw)}
	default:
		return Value{Kind: Scalar, Text: strings.TrimSpace(raw)}
	}
}

// RecordArrayText cuts the first top-level JSON array out of raw, dropping
// any prose before it and after its closing bracket, then swaps single
// quotes for double quotes.
//
// Depth counting ignores string literals, so a bracket inside a quoted value
// ends the array early. Quote swapping also rewrites apostrophes inside
// values. Both are known limitations of this format.
func RecordArrayText(raw string) string {
	text := strings.TrimSpace(raw)
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return normalizeQuotes(text)
	}

	end := len(text)
	depth := 0
scan:
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i + 1
				break scan
			}
		}
	}

	return normalizeQuotes(text[start:end])
}

func normalizeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

// DecodeRecords extracts a record array from raw and decodes it into dst,
// which must be a pointer to a slice. A bare null is not a list; only an
// explicit [] clears a table.
func DecodeRecords(raw string, dst any) error {
	text := RecordArrayText(raw)
	if text == "" {
		return fmt.Errorf("%w: empty record list", domain.ErrMalformedResponse)
	}
	if strings.EqualFold(text, "null") {
		return fmt.Errorf("%w: null record list", domain.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// ObjectText cuts the outermost JSON object out of raw, stripping markdown
// code fences. With no braces the trimmed text is returned unchanged.
func ObjectText(raw string) string {
	text := stripFences(strings.TrimSpace(raw))
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:] // language tag line
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}
