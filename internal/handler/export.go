package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/domain/services"
	"idfbuilder/internal/httputil"
)

// ExportHandler renders forms to PDF.
type ExportHandler struct {
	exporter services.PDFExporter
	logger   *slog.Logger
}

func NewExportHandler(exporter services.PDFExporter, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{exporter: exporter, logger: logger}
}

// Export returns the document as a PDF attachment
// POST /api/export
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var doc idf.Document
	if err := httputil.ParseJSON(w, r, &doc); err != nil {
		handleError(w, err)
		return
	}

	var buf bytes.Buffer
	result, err := h.exporter.Export(r.Context(), doc, &buf)
	if err != nil {
		h.logger.Error("export failed", "error", err)
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Page-Count", strconv.Itoa(result.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("export write interrupted", "error", err)
	}
}
