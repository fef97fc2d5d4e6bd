package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/domain/services"
	"idfbuilder/internal/service/extract"
)

// fakeGenerator answers every prompt with a fixed reply. When block is set
// the call waits for it to close (or the context to end) after signalling
// started.
type fakeGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
	started chan struct{}
	block   chan struct{}
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

func (f *fakeGenerator) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.prompts...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPrompts(t *testing.T) *PromptCatalog {
	t.Helper()
	prompts, err := LoadPrompts()
	require.NoError(t, err)
	return prompts
}

func seededDocument() idf.Document {
	doc := idf.Default()
	doc.Title = "Old title"
	doc.Invention.Description = "A handheld laser scalpel with adaptive power control"
	doc.Invention.Keywords = idf.StringList{"laser", "surgery"}
	doc.Invention.AdditionalData = "Existing note"
	doc.PriorArt = []idf.PriorArtItem{{Title: "Earlier work"}}
	doc.Invention.UploadedImages = []string{"/uploads/a.png", "/uploads/b.png"}
	return doc
}

func TestPrompts(t *testing.T) {
	prompts := testPrompts(t)

	for _, f := range RegenerableFields {
		_, ok := prompts.Kind(f)
		assert.True(t, ok, "no kind for %s", f)
	}

	kinds := map[idf.FieldName]extract.Kind{
		idf.FieldTitle:      extract.Scalar,
		idf.FieldKeywords:   extract.CommaList,
		idf.FieldResults:    extract.CommaList,
		idf.FieldPriorArt:   extract.RecordArray,
		idf.FieldPlans:      extract.RecordArray,
		idf.FieldAdvantages: extract.Scalar,
	}
	for f, want := range kinds {
		got, _ := prompts.Kind(f)
		assert.Equal(t, want, got, f)
	}

	_, ok := prompts.Kind(idf.FieldDate)
	assert.False(t, ok)
}

func TestPromptCatalog_FieldPrompt(t *testing.T) {
	prompts := testPrompts(t)

	p := prompts.FieldPrompt(idf.FieldKeywords, "Solar still", idf.StringList{"water", "solar"}, nil)
	assert.Contains(t, p, "keywords")
	assert.Contains(t, p, "'Solar still'")
	assert.Contains(t, p, "'water, solar'")
	assert.Contains(t, p, "5 keywords")
	assert.NotContains(t, p, "Get data from")
	assert.NotContains(t, p, "{{")

	p = prompts.FieldPrompt(idf.FieldPriorArt, "Solar still", nil, []string{"https://example.com/a"})
	assert.Contains(t, p, `Get data from ["https://example.com/a"]`)
}

func TestPromptCatalog_DocumentPrompt(t *testing.T) {
	prompts := testPrompts(t)

	p := prompts.DocumentPrompt("Solar still", "2025-03-01T10:00:00Z")
	assert.Contains(t, p, `about "Solar still"`)
	assert.Contains(t, p, `Today is "2025-03-01T10:00:00Z"`)
	assert.Contains(t, p, "PublicationDate")
	assert.NotContains(t, p, "{{")
}

func TestParsePrompts_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "document: [unclosed"},
		{"no document template", "field:\n  template: x\n"},
		{"missing field", "document:\n  template: d\nfield:\n  template: f\nfields: {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrompts([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}

	bad := strings.Replace(string(defaultPrompts), "kind: record_array", "kind: table", 1)
	_, err := ParsePrompts([]byte(bad))
	assert.Error(t, err)
}

func TestRegenerateField_Merges(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		answer string
		check  func(t *testing.T, d idf.Document)
	}{
		{
			name:   "keywords split on commas",
			field:  "keywords",
			answer: "optics, , power control ,safety",
			check: func(t *testing.T, d idf.Document) {
				assert.Equal(t, idf.StringList{"optics", "power control", "safety"}, d.Invention.Keywords)
			},
		},
		{
			name:   "title trimmed",
			field:  "title",
			answer: "  Adaptive Laser Scalpel \n",
			check: func(t *testing.T, d idf.Document) {
				assert.Equal(t, "Adaptive Laser Scalpel", d.Title)
			},
		},
		{
			name:   "background set directly",
			field:  "Background",
			answer: "Lasers are common in surgery.",
			check: func(t *testing.T, d idf.Document) {
				assert.Equal(t, "Lasers are common in surgery.", d.Invention.Background)
			},
		},
		{
			name:   "prior art replaced wholesale",
			field:  "prior_art",
			answer: "Sure: [{'title': 'Laser cutting', 'authors': 'Doe', 'published': 'journal', 'PublicationDate': 2019}, {'title': 'Scalpel'}] hope it helps",
			check: func(t *testing.T, d idf.Document) {
				require.Len(t, d.PriorArt, 2)
				assert.Equal(t, idf.PriorArtItem{Title: "Laser cutting", Authors: "Doe", Published: "journal", PublicationDate: "2019"}, d.PriorArt[0])
				assert.Equal(t, "Scalpel", d.PriorArt[1].Title)
				assert.Equal(t, "", d.PriorArt[1].Authors)
			},
		},
		{
			name:   "additional data applied",
			field:  "additionaldata",
			answer: "New finding: X",
			check: func(t *testing.T, d idf.Document) {
				assert.Equal(t, "New finding: X", d.Invention.AdditionalData)
			},
		},
		{
			name:   "additional data sentinel ignored",
			field:  "additionaldata",
			answer: "N/A",
			check: func(t *testing.T, d idf.Document) {
				assert.Equal(t, "Existing note", d.Invention.AdditionalData)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{answer: tt.answer}
			session := idf.NewSession(seededDocument())
			sg := NewSectionGenerator(gen, testPrompts(t), testLogger())

			update, err := sg.RegenerateField(context.Background(), session, &services.RegenerateFieldRequest{Field: tt.field})
			require.NoError(t, err)
			require.Len(t, gen.calls(), 1)

			tt.check(t, update.Document)
			tt.check(t, session.Document())
			assert.Equal(t, []string{"/uploads/a.png", "/uploads/b.png"}, session.Document().Invention.UploadedImages)
			assert.Empty(t, session.UpdatingFields())
		})
	}
}

func TestRegenerateField_SentinelReportsNotApplied(t *testing.T) {
	gen := &fakeGenerator{answer: "No additional data available."}
	session := idf.NewSession(seededDocument())
	sg := NewSectionGenerator(gen, testPrompts(t), testLogger())

	update, err := sg.RegenerateField(context.Background(), session, &services.RegenerateFieldRequest{Field: "additionaldata"})

	require.NoError(t, err)
	assert.False(t, update.Applied)
	assert.Equal(t, "Existing note", session.Document().Invention.AdditionalData)
}

func TestRegenerateField_OnlyTouchesOneField(t *testing.T) {
	gen := &fakeGenerator{answer: "Improved problem statement"}
	before := seededDocument()
	session := idf.NewSession(before)
	sg := NewSectionGenerator(gen, testPrompts(t), testLogger())

	_, err := sg.RegenerateField(context.Background(), session, &services.RegenerateFieldRequest{Field: "problem"})
	require.NoError(t, err)

	after := session.Document()
	assert.Equal(t, "Improved problem statement", after.Invention.Problem)
	after.Invention.Problem = before.Invention.Problem
	assert.Equal(t, before, after)
}

func TestRegenerateField_NoDescriptionIsNoop(t *testing.T) {
	gen := &fakeGenerator{answer: "anything"}
	doc := seededDocument()
	doc.Invention.Description = ""
	session := idf.NewSession(doc)
	sg := NewSectionGenerator(gen, testPrompts(t), testLogger())

	update, err := sg.RegenerateField(context.Background(), session, &services.RegenerateFieldRequest{Field: "title"})

	require.NoError(t, err)
	assert.Empty(t, gen.calls())
	assert.Equal(t, doc, update.Document)
	assert.False(t, update.Applied)
}

func TestRegenerateField_PromptCarriesContext(t *testing.T) {
	gen := &fakeGenerator{answer: "[]"}
	session := idf.NewSession(seededDocument())
	sg := NewSectionGenerator(gen, testPrompts(t), testLogger())

	_, err := sg.RegenerateField(context.Background(), session, &services.RegenerateFieldRequest{
		Field: "disclosure",
		URLs:  []string{"https://example.com/paper"},
	})
	require.NoError(t, err)

	prompts := gen.calls()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "A handheld laser scalpel with adaptive power control")
	assert.Contains(t, prompts[0], "laser, surgery")
	assert.Contains(t, prompts[0], "https://example.com/paper")
	assert.Empty(t, session.Document().Disclosure)
}

func TestRegenerateField_Failures(t *testing.T) {
	tests := []struct {
		name    string
		req     services.RegenerateFieldRequest
		answer  string
		genErr  error
		wantErr error
		called  bool
	}{
		{"unknown field", services.RegenerateFieldRequest{Field: "colour"}, "", nil, domain.ErrValidation, false},
		{"field not regenerable", services.RegenerateFieldRequest{Field: "inventors"}, "", nil, domain.ErrValidation, false},
		{"missing field", services.RegenerateFieldRequest{}, "", nil, domain.ErrValidation, false},
		{"bad url", services.RegenerateFieldRequest{Field: "title", URLs: []string{"not a url"}}, "", nil, domain.ErrValidation, false},
		{"upstream failure", services.RegenerateFieldRequest{Field: "title"}, "", domain.ErrUpstream, domain.ErrUpstream, true},
		{"not configured", services.RegenerateFieldRequest{Field: "title"}, "", domain.ErrUpstreamUnavailable, domain.ErrUpstreamUnavailable, true},
		{"malformed table", services.RegenerateFieldRequest{Field: "prior_art"}, "I could not find anything.", nil, domain.ErrMalformedResponse, true},
		{"broken table json", services.RegenerateFieldRequest{Field: "plans"}, "[{'title': ", nil, domain.ErrMalformedResponse, true},
		{"null table", services.RegenerateFieldRequest{Field: "prior_art"}, "null", nil, domain.ErrMalformedResponse, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{answer: tt.answer, err: tt.genErr}
			before := seededDocument()
			session := idf.NewSession(before)
			sg := NewSectionGenerator(gen, testPrompts(t), testLogger())

			req := tt.req
			update, err := sg.RegenerateField(context.Background(), session, &req)

			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.called, len(gen.calls()) == 1)
			require.NotNil(t, update)
			assert.Equal(t, before, update.Document)
			assert.Equal(t, before, session.Document())
			assert.Empty(t, session.UpdatingFields())
		})
	}
}

func TestRegenerateField_MarkerPreventsDoubleDispatch(t *testing.T) {
	gen := &fakeGenerator{
		answer:  "Second title",
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	session := idf.NewSession(seededDocument())
	sg := NewSectionGenerator(gen, testPrompts(t), testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := sg.RegenerateField(context.Background(), session, &services.RegenerateFieldRequest{Field: "title"})
		done <- err
	}()

	<-gen.started
	assert.True(t, session.IsUpdating(idf.FieldTitle))

	_, err := sg.RegenerateField(context.Background(), session, &services.RegenerateFieldRequest{Field: "title"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	close(gen.block)
	require.NoError(t, <-done)
	assert.False(t, session.IsUpdating(idf.FieldTitle))
	assert.Equal(t, "Second title", session.Document().Title)
}

func TestRegenerateField_CancelledContextClearsMarker(t *testing.T) {
	gen := &fakeGenerator{started: make(chan struct{}, 1), block: make(chan struct{})}
	session := idf.NewSession(seededDocument())
	sg := NewSectionGenerator(gen, testPrompts(t), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := sg.RegenerateField(ctx, session, &services.RegenerateFieldRequest{Field: "abstract"})
		done <- err
	}()

	<-gen.started
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("regeneration did not return after cancel")
	}
	assert.False(t, session.IsUpdating(idf.FieldAbstract))
}

func TestMeaningful(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"null", false},
		{"undefined", false},
		{"None", false},
		{"NONE.", false},
		{"n/a", false},
		{"N/A", false},
		{"No additional data", false},
		{"no additional data available.", false},
		{"Figure 2 shows the prototype", true},
		{"None of the above applies, but see figure 3", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, meaningful(tt.in), "%q", tt.in)
	}
}

func newBulk(t *testing.T, gen *fakeGenerator) *BulkGenerator {
	t.Helper()
	bg := NewBulkGenerator(gen, testPrompts(t), testLogger())
	bg.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return bg
}

const generatedDocument = "```json\n" + `{
  "date": "2025-03-01",
  "title": "Adaptive Laser Scalpel",
  "inventors": [{"Name": "Ada", "inventorship": 60}, {"name": "Bob", "Phone": "555"}],
  "abstract": "Need and solution.",
  "invention": {
    "description": "Detailed description",
    "keywords": ["laser", "scalpel"],
    "components": "1. emitter, 2. sensor",
    "results": "prototype",
    "uploadedImages": ["/uploads/invented.png"]
  },
  "prior_art": [{"title": "Laser cutting", "PublicationDate": "2019"}],
  "disclosure": [],
  "plans": null
}` + "\n```"

func TestGenerateAll_PreservesImages(t *testing.T) {
	gen := &fakeGenerator{answer: generatedDocument}
	session := idf.NewSession(seededDocument())

	doc, err := newBulk(t, gen).GenerateAll(context.Background(), session, "Laser scalpel")
	require.NoError(t, err)

	assert.Equal(t, "Adaptive Laser Scalpel", doc.Title)
	assert.Equal(t, "2025-03-01", doc.Date)
	require.Len(t, doc.Inventors, 2)
	assert.Equal(t, "60", doc.Inventors[0].Inventorship)
	assert.Equal(t, "Bob", doc.Inventors[1].Name)
	assert.Equal(t, idf.StringList{"1. emitter", "2. sensor"}, doc.Invention.Components)
	assert.Equal(t, idf.StringList{"prototype"}, doc.Invention.Results)
	assert.Equal(t, []string{"/uploads/a.png", "/uploads/b.png"}, doc.Invention.UploadedImages)
	assert.Equal(t, []idf.PublicationPlan{}, doc.Plans)
	assert.Equal(t, doc, session.Document())
	assert.False(t, session.Loading())

	prompts := gen.calls()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `about "Laser scalpel"`)
	assert.Contains(t, prompts[0], "2025-03-01T10:00:00Z")
}

func TestGenerateAll_NoImagesStaysEmpty(t *testing.T) {
	gen := &fakeGenerator{answer: generatedDocument}
	start := seededDocument()
	start.Invention.UploadedImages = nil
	session := idf.NewSession(start)

	doc, err := newBulk(t, gen).GenerateAll(context.Background(), session, "Laser scalpel")
	require.NoError(t, err)
	assert.Equal(t, []string{}, doc.Invention.UploadedImages)
}

func TestGenerateAll_FallsBackToDescription(t *testing.T) {
	gen := &fakeGenerator{answer: generatedDocument}
	session := idf.NewSession(seededDocument())

	_, err := newBulk(t, gen).GenerateAll(context.Background(), session, "  ")
	require.NoError(t, err)

	prompts := gen.calls()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `about "A handheld laser scalpel with adaptive power control"`)
}

func TestGenerateAll_Failures(t *testing.T) {
	tests := []struct {
		name    string
		seed    string
		doc     func() idf.Document
		answer  string
		genErr  error
		wantErr error
		called  bool
	}{
		{
			name:    "no seed and no description",
			doc:     idf.Default,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "seed too long",
			seed:    strings.Repeat("x", 501),
			doc:     seededDocument,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "upstream failure",
			seed:    "Laser",
			doc:     seededDocument,
			genErr:  domain.ErrUpstream,
			wantErr: domain.ErrUpstream,
			called:  true,
		},
		{
			name:    "prose answer",
			seed:    "Laser",
			doc:     seededDocument,
			answer:  "Here is the document you asked for.",
			wantErr: domain.ErrMalformedResponse,
			called:  true,
		},
		{
			name:    "wrong shape",
			seed:    "Laser",
			doc:     seededDocument,
			answer:  `{"inventors": "Ada"}`,
			wantErr: domain.ErrMalformedResponse,
			called:  true,
		},
		{
			name:    "null answer",
			seed:    "Laser",
			doc:     seededDocument,
			answer:  "null",
			wantErr: domain.ErrMalformedResponse,
			called:  true,
		},
		{
			name:    "empty object",
			seed:    "Laser",
			doc:     seededDocument,
			answer:  "```json\n{}\n```",
			wantErr: domain.ErrMalformedResponse,
			called:  true,
		},
		{
			name:    "unrelated keys",
			seed:    "Laser",
			doc:     seededDocument,
			answer:  `{"answer": "Laser", "confidence": 0.9}`,
			wantErr: domain.ErrMalformedResponse,
			called:  true,
		},
		{
			name:    "only null sections",
			seed:    "Laser",
			doc:     seededDocument,
			answer:  `{"title": null, "invention": null}`,
			wantErr: domain.ErrMalformedResponse,
			called:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{answer: tt.answer, err: tt.genErr}
			before := tt.doc()
			session := idf.NewSession(before)

			doc, err := newBulk(t, gen).GenerateAll(context.Background(), session, tt.seed)

			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.called, len(gen.calls()) == 1)
			assert.Equal(t, before, doc)
			assert.Equal(t, before, session.Document())
			assert.False(t, session.Loading())
		})
	}
}

func TestGenerateAll_RejectsConcurrentRun(t *testing.T) {
	gen := &fakeGenerator{answer: generatedDocument, started: make(chan struct{}, 1), block: make(chan struct{})}
	session := idf.NewSession(seededDocument())
	bg := newBulk(t, gen)

	done := make(chan error, 1)
	go func() {
		_, err := bg.GenerateAll(context.Background(), session, "Laser")
		done <- err
	}()

	<-gen.started
	assert.True(t, session.Loading())

	_, err := bg.GenerateAll(context.Background(), session, "Laser")
	assert.True(t, errors.Is(err, domain.ErrConflict))

	close(gen.block)
	require.NoError(t, <-done)
	assert.False(t, session.Loading())
}
