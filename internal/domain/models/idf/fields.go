package idf

import (
	"encoding/json"
	"fmt"
	"strings"

	"idfbuilder/internal/domain"
)

// FieldName names an editable field of the document.
type FieldName string

const (
	FieldDate           FieldName = "date"
	FieldTitle          FieldName = "title"
	FieldAbstract       FieldName = "abstract"
	FieldInventors      FieldName = "inventors"
	FieldDescription    FieldName = "description"
	FieldKeywords       FieldName = "keywords"
	FieldBackground     FieldName = "background"
	FieldProblem        FieldName = "problem"
	FieldComponents     FieldName = "components"
	FieldAdvantages     FieldName = "advantages"
	FieldAdditionalData FieldName = "additionaldata"
	FieldResults        FieldName = "results"
	FieldPriorArt       FieldName = "prior_art"
	FieldDisclosure     FieldName = "disclosure"
	FieldPlans          FieldName = "plans"
)

var allFields = []FieldName{
	FieldDate, FieldTitle, FieldAbstract, FieldInventors,
	FieldDescription, FieldKeywords, FieldBackground, FieldProblem,
	FieldComponents, FieldAdvantages, FieldAdditionalData, FieldResults,
	FieldPriorArt, FieldDisclosure, FieldPlans,
}

// ParseFieldName resolves a field name, accepting any case.
func ParseFieldName(s string) (FieldName, error) {
	name := FieldName(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range allFields {
		if f == name {
			return f, nil
		}
	}
	return "", &domain.ValidationError{Message: fmt.Sprintf("unknown field %q", s)}
}

// IsTableSection reports whether the field is one of the three citation tables.
func (f FieldName) IsTableSection() bool {
	return f == FieldPriorArt || f == FieldDisclosure || f == FieldPlans
}

// IsList reports whether the field is held as a StringList.
func (f FieldName) IsList() bool {
	return f == FieldKeywords || f == FieldComponents || f == FieldResults
}

// SetText assigns a text value. List fields are split on commas.
func (d *Document) SetText(f FieldName, value string) error {
	if f.IsList() {
		d.setList(f, SplitCommaList(value))
		return nil
	}
	dst := d.scalar(f)
	if dst == nil {
		return &domain.ValidationError{Message: fmt.Sprintf("field %q does not take text", f)}
	}
	*dst = value
	return nil
}

// SetList assigns a list field.
func (d *Document) SetList(f FieldName, items []string) error {
	if !f.IsList() {
		return &domain.ValidationError{Message: fmt.Sprintf("field %q is not a list", f)}
	}
	d.setList(f, append(StringList{}, items...))
	return nil
}

// SetFieldJSON assigns any field from its JSON form: text, list (string or
// array) or table rows.
func (d *Document) SetFieldJSON(f FieldName, raw json.RawMessage) error {
	switch {
	case f == FieldInventors:
		var rows []Inventor
		if err := json.Unmarshal(raw, &rows); err != nil {
			return &FieldDecodeError{Field: string(f), Err: err}
		}
		d.Inventors = nonNil(rows)
	case f == FieldPriorArt:
		var rows []PriorArtItem
		if err := json.Unmarshal(raw, &rows); err != nil {
			return &FieldDecodeError{Field: string(f), Err: err}
		}
		d.PriorArt = nonNil(rows)
	case f == FieldDisclosure:
		var rows []DisclosureItem
		if err := json.Unmarshal(raw, &rows); err != nil {
			return &FieldDecodeError{Field: string(f), Err: err}
		}
		d.Disclosure = nonNil(rows)
	case f == FieldPlans:
		var rows []PublicationPlan
		if err := json.Unmarshal(raw, &rows); err != nil {
			return &FieldDecodeError{Field: string(f), Err: err}
		}
		d.Plans = nonNil(rows)
	case f.IsList():
		var items StringList
		if err := items.UnmarshalJSON(raw); err != nil {
			return &FieldDecodeError{Field: string(f), Err: err}
		}
		d.setList(f, items)
	default:
		s, err := looseString(raw, "\n")
		if err != nil {
			return &FieldDecodeError{Field: string(f), Err: err}
		}
		return d.SetText(f, s)
	}
	return nil
}

// Text returns the display form of a text or list field.
func (d *Document) Text(f FieldName) (string, bool) {
	if f.IsList() {
		return d.list(f).String(), true
	}
	if dst := d.scalar(f); dst != nil {
		return *dst, true
	}
	return "", false
}

func (d *Document) scalar(f FieldName) *string {
	switch f {
	case FieldDate:
		return &d.Date
	case FieldTitle:
		return &d.Title
	case FieldAbstract:
		return &d.Abstract
	case FieldDescription:
		return &d.Invention.Description
	case FieldBackground:
		return &d.Invention.Background
	case FieldProblem:
		return &d.Invention.Problem
	case FieldAdvantages:
		return &d.Invention.Advantages
	case FieldAdditionalData:
		return &d.Invention.AdditionalData
	}
	return nil
}

func (d *Document) list(f FieldName) StringList {
	switch f {
	case FieldKeywords:
		return d.Invention.Keywords
	case FieldComponents:
		return d.Invention.Components
	case FieldResults:
		return d.Invention.Results
	}
	return nil
}

func (d *Document) setList(f FieldName, items StringList) {
	if items == nil {
		items = StringList{}
	}
	switch f {
	case FieldKeywords:
		d.Invention.Keywords = items
	case FieldComponents:
		d.Invention.Components = items
	case FieldResults:
		d.Invention.Results = items
	}
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
