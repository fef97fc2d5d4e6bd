// Command idf-export renders a saved form document (JSON) to PDF.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"idfbuilder/internal/config"
	"idfbuilder/internal/domain/models/idf"
	"idfbuilder/internal/render"
	"idfbuilder/internal/service/export"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stderr); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "idf-export: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stderr io.Writer) error {
	_ = godotenv.Load()
	base := config.Load()

	cli, err := config.LoadCLI("idf-export", args, base, stderr)
	if err != nil {
		return err
	}

	level, _ := config.ParseLevel(cli.LogLevel)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	doc, err := readDocument(cli.Input, stdin)
	if err != nil {
		return err
	}

	out, err := os.Create(cli.Output)
	if err != nil {
		return fmt.Errorf("create %s: %w", cli.Output, err)
	}

	renderer := render.NewRenderer(render.Options{
		OrganizationName: cli.OrgName,
		IPManagerEmail:   base.IPManagerEmail,
		UploadPrefix:     base.UploadURLPrefix,
	})
	result, err := export.NewExporter(renderer, logger).Export(context.Background(), doc, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(cli.Output)
		return err
	}

	fmt.Fprintf(stderr, "wrote %s: %d pages, %d bytes\n", cli.Output, result.Pages, result.Bytes)
	return nil
}

// readDocument reads the document from path, or stdin when path is empty
// or "-".
func readDocument(path string, stdin io.Reader) (idf.Document, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return idf.Document{}, err
		}
		defer f.Close()
		r = f
	}

	var doc idf.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return idf.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
