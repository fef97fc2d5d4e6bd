package idf

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StringList is an invention field that may be written as a comma separated
// string or as a sequence. It is always held as a sequence; String gives the
// display form.
type StringList []string

// SplitCommaList splits s on commas, trims each piece and drops empty ones.
func SplitCommaList(s string) StringList {
	pieces := strings.Split(s, ",")
	items := make(StringList, 0, len(pieces))
	for _, p := range pieces {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// String joins the items with ", ".
func (l StringList) String() string {
	return strings.Join(l, ", ")
}

// MarshalJSON always emits an array, never null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts a string (comma split), an array or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = StringList{}
		return nil
	}

	if trimmed[0] != '[' {
		s, err := looseString(trimmed, ", ")
		if err != nil {
			return err
		}
		*l = SplitCommaList(s)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	items := make(StringList, 0, len(raw))
	for _, r := range raw {
		s, err := looseString(r, " ")
		if err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	*l = items
	return nil
}
