// Package export renders disclosure forms to PDF.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/domain/services"
	"idfbuilder/internal/render"
)

// Exporter implements services.PDFExporter.
type Exporter struct {
	renderer *render.Renderer
	logger   *slog.Logger
}

func NewExporter(renderer *render.Renderer, logger *slog.Logger) *Exporter {
	return &Exporter{renderer: renderer, logger: logger}
}

// Export lays doc out, serializes it and checks the result parses before
// writing anything to w.
func (e *Exporter) Export(ctx context.Context, doc idf.Document, w io.Writer) (*services.ExportResult, error) {
	start := time.Now()

	out := e.renderer.Render(doc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.WritePDF(out, doc.Title, &buf); err != nil {
		return nil, err
	}

	info, err := render.Inspect(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if info.Pages != out.PageCount() {
		return nil, fmt.Errorf("export: wrote %d pages, laid out %d", info.Pages, out.PageCount())
	}

	n, err := buf.WriteTo(w)
	if err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}

	e.logger.Info("pdf exported",
		"pages", info.Pages,
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &services.ExportResult{
		FileName: config.ExportFileName,
		Pages:    info.Pages,
		Bytes:    n,
	}, nil
}

var _ services.PDFExporter = (*Exporter)(nil)
