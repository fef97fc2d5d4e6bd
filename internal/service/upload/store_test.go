package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/services"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngFile(name string) services.ImageFile {
	return services.ImageFile{Name: name, ContentType: "image/png", Data: append([]byte{}, pngHeader...)}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	return NewStore(dir, "/uploads/", slog.New(slog.NewTextHandler(io.Discard, nil))), dir
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStore_Save(t *testing.T) {
	store, dir := newTestStore(t)

	paths, err := store.Save(context.Background(), []services.ImageFile{
		pngFile("diagram.PNG"),
		{Name: "blob", Data: append([]byte{}, pngHeader...)},
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, p := range paths {
		assert.True(t, strings.HasPrefix(p, "/uploads/"), p)
		assert.True(t, strings.HasSuffix(p, ".png"), p)

		data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(p, "/uploads/")))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngHeader))
	}
	assert.NotEqual(t, paths[0], paths[1])
	assert.Len(t, storedFiles(t, dir), 2)
	assert.Equal(t, dir, store.Dir())
}

func TestStore_RejectsWholeBatch(t *testing.T) {
	tooBig := pngFile("huge.png")
	tooBig.Data = append(tooBig.Data, make([]byte, config.MaxUploadFileSize)...)

	tests := []struct {
		name    string
		bad     services.ImageFile
		wantErr error
	}{
		{"declared text", services.ImageFile{Name: "notes.txt", ContentType: "text/plain", Data: pngHeader}, domain.ErrValidation},
		{"sniffed text", services.ImageFile{Name: "fake.png", ContentType: "image/png", Data: []byte("just text")}, domain.ErrValidation},
		{"empty", services.ImageFile{Name: "empty.png", ContentType: "image/png"}, domain.ErrValidation},
		{"bad media type", services.ImageFile{Name: "x.png", ContentType: "image/", Data: pngHeader}, domain.ErrValidation},
		{"too large", tooBig, domain.ErrPayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newTestStore(t)

			paths, err := store.Save(context.Background(), []services.ImageFile{pngFile("ok.png"), tt.bad})

			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Nil(t, paths)
			assert.Empty(t, storedFiles(t, dir))
		})
	}
}

func TestStore_NoFiles(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Save(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestStore_CancelledContextWritesNothing(t *testing.T) {
	store, dir := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, []services.ImageFile{pngFile("a.png")})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, storedFiles(t, dir))
}
