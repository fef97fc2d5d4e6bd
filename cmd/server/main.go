package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"idfbuilder/internal/capabilities"
	"idfbuilder/internal/config"
	"idfbuilder/internal/handler"
	"idfbuilder/internal/middleware"
	"idfbuilder/internal/render"
	"idfbuilder/internal/service/export"
	"idfbuilder/internal/service/generation"
	serviceLLM "idfbuilder/internal/service/llm"
	"idfbuilder/internal/service/upload"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logFile, err := config.NewLogger(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"document_provider", cfg.DocumentProvider,
		"field_provider", cfg.FieldProvider,
	)

	registry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}

	gens, err := serviceLLM.SetupGenerators(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up generators: %v", err)
	}
	generators, err := generation.Setup(gens, logger)
	if err != nil {
		log.Fatalf("Failed to set up generation: %v", err)
	}

	store := upload.NewStore(cfg.UploadDir, cfg.UploadURLPrefix, logger)
	renderer := render.NewRenderer(render.Options{
		OrganizationName: cfg.OrganizationName,
		IPManagerEmail:   cfg.IPManagerEmail,
		UploadPrefix:     cfg.UploadURLPrefix,
	})
	exporter := export.NewExporter(renderer, logger)

	documentHandler := handler.NewDocumentHandler(logger)
	generationHandler := handler.NewGenerationHandler(generators.Section, generators.Bulk, logger)
	uploadHandler := handler.NewUploadHandler(store, logger)
	exportHandler := handler.NewExportHandler(exporter, logger)
	modelsHandler := handler.NewModelsHandler(cfg, logger, registry)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", documentHandler.HealthCheck)

	// Document edits
	mux.HandleFunc("GET /api/documents/default", documentHandler.GetDefault)
	mux.HandleFunc("POST /api/documents/fields", documentHandler.SetField)
	mux.HandleFunc("POST /api/documents/images/remove", documentHandler.RemoveImage)

	// Generation
	mux.HandleFunc("GET /api/models/providers", modelsHandler.GetProviders)
	mux.HandleFunc("POST /api/generate-idf", generationHandler.GenerateDocument)
	mux.HandleFunc("POST /api/generate-field", generationHandler.GenerateField)

	// Images
	prefix := strings.TrimRight(cfg.UploadURLPrefix, "/") + "/"
	mux.HandleFunc("POST /api/upload", uploadHandler.Upload)
	mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(store.Dir()))))

	// Export
	mux.HandleFunc("POST /api/export", exportHandler.Export)

	// Build middleware chain
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Page-Count"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 30 * time.Second,
		// Generation waits on the upstream model for up to LLM_TIMEOUT.
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port, "uploads", store.Dir())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
