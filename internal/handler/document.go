package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/httputil"
)

// DocumentHandler serves the pure document edits. The client owns the
// document and sends it with every request.
type DocumentHandler struct {
	logger *slog.Logger
}

func NewDocumentHandler(logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{logger: logger}
}

// HealthCheck returns a simple health status
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetDefault returns an empty form
// GET /api/documents/default
func (h *DocumentHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, idf.Default())
}

type setFieldRequest struct {
	Document idf.Document    `json:"document"`
	Field    string          `json:"field"`
	Value    json.RawMessage `json:"value"`
}

func (r *setFieldRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Field, validation.Required),
		validation.Field(&r.Value, validation.Required.Error("value is required")),
	)
}

// SetField assigns one field, coercing lists from comma strings and table
// rows from loosely typed records
// POST /api/documents/fields
func (h *DocumentHandler) SetField(w http.ResponseWriter, r *http.Request) {
	var req setFieldRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		handleError(w, &domain.ValidationError{Message: err.Error()})
		return
	}

	field, err := idf.ParseFieldName(req.Field)
	if err != nil {
		handleError(w, err)
		return
	}

	doc := req.Document
	if err := doc.SetFieldJSON(field, req.Value); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

type removeImageRequest struct {
	Document idf.Document `json:"document"`
	Index    int          `json:"index"`
}

// RemoveImage drops one uploaded image reference
// POST /api/documents/images/remove
func (h *DocumentHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	var req removeImageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	doc := req.Document
	if err := doc.RemoveImage(req.Index); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
