package services

import (
	"context"
	"io"

	"idfbuilder/internal/domain/models/idf"
)

// FieldGenerator regenerates one section of a form through the field
// collaborator.
type FieldGenerator interface {
	// RegenerateField replaces exactly one field of the session document.
	// The returned update carries the session document after the call, which
	// is unchanged when an error is returned.
	RegenerateField(ctx context.Context, s *idf.Session, req *RegenerateFieldRequest) (*idf.FieldUpdate, error)
}

// DocumentGenerator fills a whole form from a seed title.
type DocumentGenerator interface {
	// GenerateAll replaces the session document with a generated one,
	// keeping the uploaded images. On error the session keeps its document
	// and that document is returned.
	GenerateAll(ctx context.Context, s *idf.Session, seedTitle string) (idf.Document, error)
}

// ImageStore keeps uploaded images and returns their public paths.
type ImageStore interface {
	Save(ctx context.Context, files []ImageFile) ([]string, error)
}

// PDFExporter renders a form to PDF.
type PDFExporter interface {
	Export(ctx context.Context, doc idf.Document, w io.Writer) (*ExportResult, error)
}

// RegenerateFieldRequest names the field and optional reference URLs the
// collaborator should read.
type RegenerateFieldRequest struct {
	Field string   `json:"field"`
	URLs  []string `json:"urls,omitempty"`
}

// ImageFile is one uploaded file as received.
type ImageFile struct {
	Name        string
	ContentType string // declared by the client, may be empty
	Data        []byte
}

// ExportResult describes a written PDF.
type ExportResult struct {
	FileName string
	Pages    int
	Bytes    int64
}
