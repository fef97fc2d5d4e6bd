package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CLIConfig holds the command line settings of the idf-mcp and idf-export
// binaries. Values come from flags, then IDF_* environment variables, then
// the defaults derived from Config.
type CLIConfig struct {
	Input     string // document JSON to render (idf-export)
	Output    string // PDF path (idf-export)
	OutputDir string // where export_pdf writes (idf-mcp)
	UploadDir string
	OrgName   string
	LogLevel  string
}

// ErrHelp is returned when -h/--help was requested.
var ErrHelp = pflag.ErrHelp

// LoadCLI parses args for the named binary.
func LoadCLI(name string, args []string, base *Config, usage io.Writer) (*CLIConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("IDF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(usage)
	fs.String("in", "", "Document JSON file to render")
	fs.String("out", ExportFileName, "Output PDF path")
	fs.String("output-dir", cwd, "Directory for exported PDFs")
	fs.String("upload-dir", base.UploadDir, "Directory for stored images")
	fs.String("org-name", base.OrganizationName, "Organization name printed in the form header")
	fs.String("loglevel", "info", "Log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(usage, "Usage of %s:\n", name)
		fs.PrintDefaults()
		fmt.Fprintf(usage, "\nEvery flag can also be set as IDF_<FLAG>, e.g. IDF_OUTPUT_DIR.\n")
	}

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &CLIConfig{
		Input:     v.GetString("in"),
		Output:    v.GetString("out"),
		OutputDir: v.GetString("output-dir"),
		UploadDir: v.GetString("upload-dir"),
		OrgName:   v.GetString("org-name"),
		LogLevel:  v.GetString("loglevel"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings every binary needs.
func (c *CLIConfig) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}
	if c.UploadDir == "" {
		return errors.New("upload directory cannot be empty")
	}
	return nil
}
