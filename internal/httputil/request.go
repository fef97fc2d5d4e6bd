package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"idfbuilder/internal/domain"
)

// MaxJSONBodySize bounds JSON request bodies.
const MaxJSONBodySize = 10 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// Malformed bodies are validation errors; oversized ones are
// domain.ErrPayloadTooLarge.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrPayloadTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrValidation, err)
	}

	return nil
}
