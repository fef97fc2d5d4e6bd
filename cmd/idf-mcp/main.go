// Command idf-mcp serves one invention disclosure form editing session as
// MCP tools over stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"idfbuilder/internal/config"
	"idfbuilder/internal/mcpserver"
	"idfbuilder/internal/render"
	"idfbuilder/internal/service/export"
	"idfbuilder/internal/service/generation"
	serviceLLM "idfbuilder/internal/service/llm"
	"idfbuilder/internal/service/upload"
)

// Build information, set via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "idf-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()
	base := config.Load()

	cli, err := config.LoadCLI("idf-mcp", args, base, os.Stderr)
	if err != nil {
		return err
	}

	// stdout carries the protocol, so logs go to stderr.
	level, _ := config.ParseLevel(cli.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Info("idf-mcp starting", "version", version, "commit", commit, "output_dir", cli.OutputDir)

	gens, err := serviceLLM.SetupGenerators(base, logger)
	if err != nil {
		return err
	}
	generators, err := generation.Setup(gens, logger)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(render.Options{
		OrganizationName: cli.OrgName,
		IPManagerEmail:   base.IPManagerEmail,
		UploadPrefix:     base.UploadURLPrefix,
	})

	srv, err := mcpserver.NewServer("idf-builder", version, mcpserver.Services{
		Fields:    generators.Section,
		Documents: generators.Bulk,
		Images:    upload.NewStore(cli.UploadDir, base.UploadURLPrefix, logger),
		Exporter:  export.NewExporter(renderer, logger),
	}, cli.OutputDir, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
