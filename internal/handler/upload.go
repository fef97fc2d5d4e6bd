package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/services"
	"idfbuilder/internal/httputil"
)

const multipartMemory = 32 << 20

// UploadHandler accepts image uploads.
type UploadHandler struct {
	store  services.ImageStore
	logger *slog.Logger
}

func NewUploadHandler(store services.ImageStore, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{store: store, logger: logger}
}

type uploadResponse struct {
	Success bool     `json:"success"`
	Files   []string `json:"files"`
}

// Upload stores the multipart "files" parts and returns their public paths
// in upload order. One bad file rejects the whole request.
// POST /api/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadRequestSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(w, fmt.Errorf("%w: upload exceeds %d MB", domain.ErrPayloadTooLarge, config.MaxUploadRequestSize>>20))
			return
		}
		handleError(w, &domain.ValidationError{Message: "invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	files := make([]services.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			handleError(w, err)
			return
		}
		files = append(files, f)
	}

	paths, err := h.store.Save(r.Context(), files)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, uploadResponse{Success: true, Files: paths})
}

// readPart reads at most one byte past the per-file limit so the store can
// report the oversize file by name.
func readPart(fh *multipart.FileHeader) (services.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return services.ImageFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, config.MaxUploadFileSize+1))
	if err != nil {
		return services.ImageFile{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return services.ImageFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
