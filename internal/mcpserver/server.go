// Package mcpserver exposes one disclosure form editing session as MCP
// tools over stdio.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/domain/services"
)

// Services are the collaborators the tools drive.
type Services struct {
	Fields    services.FieldGenerator
	Documents services.DocumentGenerator
	Images    services.ImageStore
	Exporter  services.PDFExporter
}

// Server owns the session every tool call reads and edits.
type Server struct {
	session   *idf.Session
	svc       Services
	outputDir string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a server editing a fresh document. Exports are written
// under outputDir.
func NewServer(name, version string, svc Services, outputDir string, logger *slog.Logger) (*Server, error) {
	if svc.Fields == nil || svc.Documents == nil || svc.Images == nil || svc.Exporter == nil {
		return nil, errors.New("mcpserver: all services are required")
	}

	s := &Server{
		session:   idf.NewSession(idf.Default()),
		svc:       svc,
		outputDir: outputDir,
		logger:    logger,
		mcpServer: server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s, nil
}

// Session returns the edited session.
func (s *Server) Session() *idf.Session {
	return s.session
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Return the current invention disclosure form as JSON, with any fields still being generated"),
	), s.handleGetDocument)

	s.mcpServer.AddTool(mcp.NewTool("set_field",
		mcp.WithDescription("Set one form field. Lists accept a comma separated string; tables accept a JSON array of rows"),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("Field name, e.g. title, keywords, inventors, prior_art"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("New value: plain text or JSON"),
		),
	), s.handleSetField)

	s.mcpServer.AddTool(mcp.NewTool("generate_document",
		mcp.WithDescription("Fill the whole form from a short subject using the document model. Uploaded images are kept"),
		mcp.WithString("title",
			mcp.Description("Subject of the invention (defaults to the current description)"),
		),
	), s.handleGenerateDocument)

	s.mcpServer.AddTool(mcp.NewTool("regenerate_field",
		mcp.WithDescription("Regenerate one section with the research model"),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("Field to regenerate, e.g. abstract, keywords, prior_art"),
		),
		mcp.WithString("urls",
			mcp.Description("Optional reference URLs, comma or newline separated"),
		),
	), s.handleRegenerateField)

	s.mcpServer.AddTool(mcp.NewTool("attach_images",
		mcp.WithDescription("Store local image files and reference them in the form"),
		mcp.WithString("paths",
			mcp.Required(),
			mcp.Description("Image file paths, comma or newline separated"),
		),
	), s.handleAttachImages)

	s.mcpServer.AddTool(mcp.NewTool("remove_image",
		mcp.WithDescription("Remove an image reference by its zero-based index"),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Index in the uploaded images list"),
		),
	), s.handleRemoveImage)

	s.mcpServer.AddTool(mcp.NewTool("replace_image",
		mcp.WithDescription("Store a local image file in place of the image reference at a zero-based index"),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Index in the uploaded images list"),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the replacement image file"),
		),
	), s.handleReplaceImage)

	s.mcpServer.AddTool(mcp.NewTool("export_pdf",
		mcp.WithDescription("Render the form to a PDF file in the output directory"),
		mcp.WithString("file_name",
			mcp.Description("File name (defaults to "+config.ExportFileName+")"),
		),
	), s.handleExportPDF)
}

type documentView struct {
	Document idf.Document    `json:"document"`
	Updating []idf.FieldName `json:"updating,omitempty"`
	Loading  bool            `json:"loading,omitempty"`
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(documentView{
		Document: s.session.Document(),
		Updating: s.session.UpdatingFields(),
		Loading:  s.session.Loading(),
	})
}

func (s *Server) handleSetField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	field, err := idf.ParseFieldName(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.session.Update(func(d *idf.Document) error {
		return d.SetFieldJSON(field, valueJSON(value))
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleGenerateDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, _ := request.GetArguments()["title"].(string)

	doc, err := s.svc.Documents.GenerateAll(ctx, s.session, title)
	if err != nil {
		s.logger.Warn("document generation failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleRegenerateField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	urls, _ := request.GetArguments()["urls"].(string)

	update, err := s.svc.Fields.RegenerateField(ctx, s.session, &services.RegenerateFieldRequest{
		Field: field,
		URLs:  splitList(urls),
	})
	if err != nil {
		s.logger.Warn("field generation failed", "field", field, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !update.Applied {
		return mcp.NewToolResultText(fmt.Sprintf("%s left unchanged: the model returned no usable content", update.Field)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated %s:\n%s", update.Field, update.Result)), nil
}

func (s *Server) handleAttachImages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := request.RequireString("paths")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var files []services.ImageFile
	for _, p := range splitList(list) {
		f, err := readImage(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		files = append(files, f)
	}

	paths, err := s.svc.Images.Save(ctx, files)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.session.Update(func(d *idf.Document) error {
		d.AppendImages(paths...)
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Attached:\n%s\n(%d images)",
		strings.Join(paths, "\n"), len(doc.Invention.UploadedImages))), nil
}

func (s *Server) handleRemoveImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, ok := imageIndex(request)
	if !ok {
		return mcp.NewToolResultError("index must be a whole number"), nil
	}

	doc, err := s.session.Update(func(d *idf.Document) error {
		return d.RemoveImage(index)
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed image %d, %d remaining", index, len(doc.Invention.UploadedImages))), nil
}

// handleReplaceImage checks the index before storing the file so a bad
// index leaves nothing behind in the upload directory.
func (s *Server) handleReplaceImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, ok := imageIndex(request)
	if !ok {
		return mcp.NewToolResultError("index must be a whole number"), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if have := len(s.session.Document().Invention.UploadedImages); index < 0 || index >= have {
		return mcp.NewToolResultError(fmt.Sprintf("image index %d out of range (have %d)", index, have)), nil
	}

	f, err := readImage(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stored, err := s.svc.Images.Save(ctx, []services.ImageFile{f})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.session.Update(func(d *idf.Document) error {
		return d.ReplaceImage(index, stored[0])
	}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Replaced image %d with %s", index, stored[0])), nil
}

func (s *Server) handleExportPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := request.GetArguments()["file_name"].(string)
	if name == "" {
		name = config.ExportFileName
	}
	if filepath.Base(name) != name || !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return mcp.NewToolResultError("file_name must be a plain .pdf file name"), nil
	}

	var buf bytes.Buffer
	result, err := s.svc.Exporter.Export(ctx, s.session.Document(), &buf)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create output directory: %v", err)), nil
	}
	target := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("write %s: %v", target, err)), nil
	}

	s.logger.Info("pdf written", "path", target, "pages", result.Pages)
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %s (%d pages, %d bytes)", target, result.Pages, result.Bytes)), nil
}

// Run serves the tools over stdio until the client disconnects or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads JSON-RPC messages from in and writes replies to out.
// Cancellation is a clean shutdown.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// valueJSON passes JSON arrays and objects through and quotes anything else
// as a string.
func valueJSON(value string) json.RawMessage {
	trimmed := strings.TrimSpace(value)
	if (strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")) && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(value)
	return quoted
}

// imageIndex reads the index argument, which arrives as a JSON number.
func imageIndex(request mcp.CallToolRequest) (int, bool) {
	raw, ok := request.GetArguments()["index"].(float64)
	if !ok || raw != float64(int(raw)) {
		return 0, false
	}
	return int(raw), true
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readImage reads at most one byte past the upload limit so the store
// rejects oversize files by name.
func readImage(path string) (services.ImageFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return services.ImageFile{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, config.MaxUploadFileSize+1))
	if err != nil {
		return services.ImageFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return services.ImageFile{Name: filepath.Base(path), Data: data}, nil
}
