package config

import "time"

const (
	// MaxUploadFileSize is the largest image accepted by the upload endpoint.
	MaxUploadFileSize = 5 << 20

	// MaxUploadRequestSize bounds a whole multipart upload request.
	MaxUploadRequestSize = 50 << 20

	// MaxSeedTitleLength bounds the subject of whole-document generation.
	MaxSeedTitleLength = 500

	// MaxReferenceURLs bounds the reference URLs passed to field generation.
	MaxReferenceURLs = 10

	// DefaultLLMTimeout bounds a single generation call so a hung upstream
	// cannot leave a field marked as updating forever.
	DefaultLLMTimeout = 120 * time.Second

	// ExportFileName is the fixed name of the exported PDF.
	ExportFileName = "invention_disclosure_form.pdf"
)
