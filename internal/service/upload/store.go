// Package upload stores user images on local disk and hands back the public
// paths the document records.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/services"
)

// Store writes images under dir and names them by URL prefix.
type Store struct {
	dir     string
	prefix  string
	maxSize int
	logger  *slog.Logger
}

// NewStore creates a store rooted at dir. Stored files are addressed as
// prefix + "/" + name.
func NewStore(dir, prefix string, logger *slog.Logger) *Store {
	return &Store{
		dir:     dir,
		prefix:  strings.TrimRight(prefix, "/"),
		maxSize: config.MaxUploadFileSize,
		logger:  logger,
	}
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates every file and only then writes them, returning their
// public paths in input order. A rejected file rejects the whole batch and
// nothing is written. If a write fails midway the files already written are
// removed.
func (s *Store) Save(ctx context.Context, files []services.ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, &domain.ValidationError{Message: "no files uploaded"}
	}

	names := make([]string, len(files))
	for i := range files {
		if err := s.validate(&files[i]); err != nil {
			return nil, err
		}
		names[i] = uuid.NewString() + extension(&files[i])
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	paths := make([]string, 0, len(files))
	written := make([]string, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			s.rollback(written)
			return nil, err
		}

		target := filepath.Join(s.dir, names[i])
		if err := os.WriteFile(target, f.Data, 0644); err != nil {
			s.rollback(written)
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		written = append(written, target)
		paths = append(paths, path.Join(s.prefix, names[i]))
	}

	s.logger.Info("images stored", "count", len(paths), "dir", s.dir)
	return paths, nil
}

func (s *Store) validate(f *services.ImageFile) error {
	if len(f.Data) > s.maxSize {
		return fmt.Errorf("%w: %s exceeds %d MB", domain.ErrPayloadTooLarge, displayName(f.Name), s.maxSize>>20)
	}

	err := validation.ValidateStruct(f,
		validation.Field(&f.Data, validation.Required.Error("file is empty")),
		validation.Field(&f.ContentType, validation.By(imageType)),
	)
	if err == nil {
		err = imageType(http.DetectContentType(f.Data))
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrValidation, displayName(f.Name), err)
	}
	return nil
}

// imageType accepts empty (not declared) or image/* media types.
func imageType(value interface{}) error {
	ct, _ := value.(string)
	if ct == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return errors.New("only image files are allowed")
	}
	return nil
}

func (s *Store) rollback(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			s.logger.Warn("failed to remove partial upload", "path", p, "error", err)
		}
	}
}

// extension keeps the original extension, or derives one from the type.
func extension(f *services.ImageFile) string {
	if ext := strings.ToLower(filepath.Ext(f.Name)); ext != "" && len(ext) <= 6 {
		return ext
	}
	ct := f.ContentType
	if ct == "" {
		ct = http.DetectContentType(f.Data)
	}
	if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func displayName(name string) string {
	if name == "" {
		return "file"
	}
	return filepath.Base(name)
}
