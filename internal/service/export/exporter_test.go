package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/render"
)

func newTestExporter() *Exporter {
	return NewExporter(
		render.NewRenderer(render.Options{OrganizationName: "Acme Research Ltd."}),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestExporter_Export(t *testing.T) {
	doc := idf.Default()
	doc.Title = "Wearable glucose monitor"
	doc.Inventors = []idf.Inventor{{Name: "Ada Lovelace", Inventorship: "100"}}
	doc.PriorArt = []idf.PriorArtItem{{Title: "Continuous sensing", Authors: "Lee"}}

	var buf bytes.Buffer
	result, err := newTestExporter().Export(context.Background(), doc, &buf)
	require.NoError(t, err)

	assert.Equal(t, config.ExportFileName, result.FileName)
	assert.Equal(t, int64(buf.Len()), result.Bytes)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	info, err := render.Inspect(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, result.Pages, info.Pages)
}

func TestExporter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err := newTestExporter().Export(ctx, idf.Default(), &buf)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}
