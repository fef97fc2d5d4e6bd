package handler

import (
	"log/slog"
	"net/http"

	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/domain/services"
	"idfbuilder/internal/httputil"
)

// GenerationHandler runs generation against the document sent by the
// client. Each request gets its own session, so failures always leave the
// returned document as it was sent.
type GenerationHandler struct {
	fields    services.FieldGenerator
	documents services.DocumentGenerator
	logger    *slog.Logger
}

func NewGenerationHandler(fields services.FieldGenerator, documents services.DocumentGenerator, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{
		fields:    fields,
		documents: documents,
		logger:    logger,
	}
}

type generateDocumentRequest struct {
	Title    string        `json:"title"`
	Document *idf.Document `json:"document,omitempty"`
}

// GenerateDocument fills the whole form from a seed title, keeping the
// uploaded images of the document sent along
// POST /api/generate-idf
func (h *GenerationHandler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	var req generateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	doc := idf.Default()
	if req.Document != nil {
		doc = *req.Document
	}

	result, err := h.documents.GenerateAll(r.Context(), idf.NewSession(doc), req.Title)
	if err != nil {
		h.logger.Warn("document generation failed", "error", err)
		handleErrorWithExtras(w, err, map[string]interface{}{"document": result})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

type generateFieldRequest struct {
	Document idf.Document `json:"document"`
	services.RegenerateFieldRequest
}

// GenerateField regenerates one section
// POST /api/generate-field
func (h *GenerationHandler) GenerateField(w http.ResponseWriter, r *http.Request) {
	var req generateFieldRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	update, err := h.fields.RegenerateField(r.Context(), idf.NewSession(req.Document), &req.RegenerateFieldRequest)
	if err != nil {
		h.logger.Warn("field generation failed", "field", req.Field, "error", err)
		handleErrorWithExtras(w, err, map[string]interface{}{"document": update.Document})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, update)
}
