package idf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"idfbuilder/internal/domain"
)

// FieldDecodeError reports which document field could not be decoded.
type FieldDecodeError struct {
	Field string
	Err   error
}

func (e *FieldDecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *FieldDecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrValidation, since decode failures come from
// caller-supplied JSON.
func (e *FieldDecodeError) Is(target error) bool {
	return target == domain.ErrValidation
}

// decodeLoose fills string fields of a flat record. Keys are matched
// case-insensitively against the lower-case keys of fields; unknown keys are
// ignored and missing keys leave the field empty.
func decodeLoose(data []byte, sep string, fields map[string]*string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		dst, ok := fields[strings.ToLower(key)]
		if !ok {
			continue
		}
		s, err := looseString(value, sep)
		if err != nil {
			return &FieldDecodeError{Field: key, Err: err}
		}
		*dst = s
	}
	return nil
}

// looseString turns any JSON value into text: strings verbatim, null as "",
// numbers and booleans as written, arrays joined with sep, objects as
// compact JSON.
func looseString(raw json.RawMessage, sep string) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			s, err := looseString(item, sep)
			if err != nil {
				return "", err
			}
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, sep), nil

	case '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", err
		}
		return buf.String(), nil

	default:
		return string(trimmed), nil
	}
}
