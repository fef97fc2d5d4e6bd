// Package idf holds the Invention Disclosure Form document model.
//
// The document is pure data: it is created empty with Default, mutated one
// field at a time (by the user or a generation cycle) or replaced wholesale
// by bulk generation, and never persisted.
package idf

import (
	"encoding/json"
	"strings"
)

// Document is the full disclosure form.
type Document struct {
	Date       string            `json:"date"`
	Title      string            `json:"title"`
	Abstract   string            `json:"abstract"`
	Inventors  []Inventor        `json:"inventors"`
	Invention  Invention         `json:"invention"`
	PriorArt   []PriorArtItem    `json:"prior_art"`
	Disclosure []DisclosureItem  `json:"disclosure"`
	Plans      []PublicationPlan `json:"plans"`
}

// Inventor is one row of the inventor table. Identity is positional:
// duplicates are allowed.
type Inventor struct {
	Name         string `json:"Name"`
	ID           string `json:"id"`
	Nationality  string `json:"nationality"`
	Employer     string `json:"employer"`
	Inventorship string `json:"inventorship"` // percentage, kept as text
	Address      string `json:"address"`
	Phone        string `json:"Phone"`
	Email        string `json:"email"`
}

// Invention is the free-text body of the form (section 5).
type Invention struct {
	Description    string     `json:"description"`
	Keywords       StringList `json:"keywords"`
	Background     string     `json:"background"`
	Problem        string     `json:"problem"`
	Components     StringList `json:"components"`
	Advantages     string     `json:"advantages"`
	AdditionalData string     `json:"additionaldata"`
	UploadedImages []string   `json:"uploadedImages"`
	Results        StringList `json:"results"`
}

// PriorArtItem is one row of the prior art table (section 6).
type PriorArtItem struct {
	Title           string `json:"title"`
	Authors         string `json:"authors"`
	Published       string `json:"published"` // journal/conference/thesis/web
	PublicationDate string `json:"PublicationDate"`
}

// DisclosureItem is one row of the prior disclosure table (section 7).
type DisclosureItem struct {
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Published string `json:"published"`
	Date      string `json:"Date"`
}

// PublicationPlan is one row of the publication plans table (section 8).
type PublicationPlan struct {
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Disclosed string `json:"disclosed"` // article/oral presentation/thesis/other
	Date      string `json:"Date"`
}

// Default returns the all-empty document a new form starts from.
func Default() Document {
	var d Document
	d.normalize()
	return d
}

// normalize replaces nil sequences with empty ones so the JSON form always
// carries arrays.
func (d *Document) normalize() {
	if d.Inventors == nil {
		d.Inventors = []Inventor{}
	}
	if d.PriorArt == nil {
		d.PriorArt = []PriorArtItem{}
	}
	if d.Disclosure == nil {
		d.Disclosure = []DisclosureItem{}
	}
	if d.Plans == nil {
		d.Plans = []PublicationPlan{}
	}
	if d.Invention.Keywords == nil {
		d.Invention.Keywords = StringList{}
	}
	if d.Invention.Components == nil {
		d.Invention.Components = StringList{}
	}
	if d.Invention.Results == nil {
		d.Invention.Results = StringList{}
	}
	if d.Invention.UploadedImages == nil {
		d.Invention.UploadedImages = []string{}
	}
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	c := d
	c.Inventors = append([]Inventor{}, d.Inventors...)
	c.PriorArt = append([]PriorArtItem{}, d.PriorArt...)
	c.Disclosure = append([]DisclosureItem{}, d.Disclosure...)
	c.Plans = append([]PublicationPlan{}, d.Plans...)
	c.Invention.Keywords = append(StringList{}, d.Invention.Keywords...)
	c.Invention.Components = append(StringList{}, d.Invention.Components...)
	c.Invention.Results = append(StringList{}, d.Invention.Results...)
	c.Invention.UploadedImages = append([]string{}, d.Invention.UploadedImages...)
	return c
}

// UnmarshalJSON accepts the loosely typed documents language models return:
// scalars may arrive as numbers, keys in any case, sequences as null.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		var err error
		switch strings.ToLower(key) {
		case "date":
			d.Date, err = looseString(value, " ")
		case "title":
			d.Title, err = looseString(value, " ")
		case "abstract":
			d.Abstract, err = looseString(value, "\n")
		case "inventors":
			err = json.Unmarshal(value, &d.Inventors)
		case "invention":
			err = json.Unmarshal(value, &d.Invention)
		case "prior_art":
			err = json.Unmarshal(value, &d.PriorArt)
		case "disclosure":
			err = json.Unmarshal(value, &d.Disclosure)
		case "plans":
			err = json.Unmarshal(value, &d.Plans)
		}
		if err != nil {
			return &FieldDecodeError{Field: key, Err: err}
		}
	}

	d.normalize()
	return nil
}

// UnmarshalJSON decodes an invention, coercing list fields given as strings.
func (inv *Invention) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		var err error
		switch strings.ToLower(key) {
		case "description":
			inv.Description, err = looseString(value, "\n")
		case "background":
			inv.Background, err = looseString(value, "\n")
		case "problem":
			inv.Problem, err = looseString(value, "\n")
		case "advantages":
			inv.Advantages, err = looseString(value, "\n")
		case "additionaldata":
			inv.AdditionalData, err = looseString(value, "\n")
		case "keywords":
			err = inv.Keywords.UnmarshalJSON(value)
		case "components":
			err = inv.Components.UnmarshalJSON(value)
		case "results":
			err = inv.Results.UnmarshalJSON(value)
		case "uploadedimages":
			err = json.Unmarshal(value, &inv.UploadedImages)
		}
		if err != nil {
			return &FieldDecodeError{Field: "invention." + key, Err: err}
		}
	}
	return nil
}

func (inv *Inventor) UnmarshalJSON(data []byte) error {
	return decodeLoose(data, ", ", map[string]*string{
		"name":         &inv.Name,
		"id":           &inv.ID,
		"nationality":  &inv.Nationality,
		"employer":     &inv.Employer,
		"inventorship": &inv.Inventorship,
		"address":      &inv.Address,
		"phone":        &inv.Phone,
		"email":        &inv.Email,
	})
}

func (p *PriorArtItem) UnmarshalJSON(data []byte) error {
	return decodeLoose(data, ", ", map[string]*string{
		"title":           &p.Title,
		"authors":         &p.Authors,
		"published":       &p.Published,
		"publicationdate": &p.PublicationDate,
	})
}

func (p *DisclosureItem) UnmarshalJSON(data []byte) error {
	return decodeLoose(data, ", ", map[string]*string{
		"title":     &p.Title,
		"authors":   &p.Authors,
		"published": &p.Published,
		"date":      &p.Date,
	})
}

func (p *PublicationPlan) UnmarshalJSON(data []byte) error {
	return decodeLoose(data, ", ", map[string]*string{
		"title":     &p.Title,
		"authors":   &p.Authors,
		"disclosed": &p.Disclosed,
		"date":      &p.Date,
	})
}
