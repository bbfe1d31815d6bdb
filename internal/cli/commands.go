// Package cli implements the underwrite command: offline report exports from
// a saved analysis result.
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/underwriter/internal/config"
	"github.com/stwalsh4118/underwriter/internal/models"
	"github.com/stwalsh4118/underwriter/internal/report"
	"gopkg.in/yaml.v3"
)

// Input and output encodings.
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

const formatAll = "all"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "underwrite",
		Short:         "Export CRE underwriting reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	rootCmd.AddCommand(newExportCmd(func() *config.Config { return cfg }))
	rootCmd.AddCommand(newSampleCmd())

	return rootCmd
}

type exportOptions struct {
	input  string
	format string
	out    string
	date   string
}

func newExportCmd(cfg func() *config.Config) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render an analysis result as a spreadsheet and/or PDF",
		Long: `Render a saved analysis result (JSON or YAML) to report files.
Example: underwrite export --input deal.yaml --format all --out ./reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, cfg(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "analysis result file (.json, .yaml or .yml)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatAll, "xlsx, pdf or all")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.date, "date", "", "report date in YYYY-MM-DD format (today if not provided)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runExport(cmd *cobra.Command, cfg *config.Config, opts *exportOptions) error {
	formats, err := parseFormats(opts.format)
	if err != nil {
		return err
	}

	genOpts := []report.Option{report.WithAssumptions(cfg.Assumptions)}
	if opts.date != "" {
		date, err := time.Parse("2006-01-02", opts.date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", opts.date)
		}
		genOpts = append(genOpts, report.WithClock(func() time.Time { return date }))
	}

	result, err := readResult(opts.input)
	if err != nil {
		return err
	}

	// Render everything before writing so a malformed result leaves no files.
	generator := report.NewGenerator(genOpts...)
	artifacts := make([]*report.Artifact, 0, len(formats))
	for _, format := range formats {
		artifact, err := generator.Render(format, result)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, artifact)
	}

	files := make([]written, 0, len(artifacts))
	for _, artifact := range artifacts {
		path, err := report.WriteFile(opts.out, artifact)
		if err != nil {
			return err
		}
		files = append(files, written{artifact: artifact, path: path})
	}

	printSummary(cmd.OutOrStdout(), result, files)
	return nil
}

func parseFormats(s string) ([]report.Format, error) {
	if strings.EqualFold(s, formatAll) {
		return []report.Format{report.FormatSpreadsheet, report.FormatDocument}, nil
	}
	format, ok := report.ParseFormat(s)
	if !ok {
		return nil, fmt.Errorf("unsupported format %q: use xlsx, pdf or all", s)
	}
	return []report.Format{format}, nil
}

// readResult decodes an analysis result, choosing the codec by extension.
// Unknown fields are rejected.
func readResult(path string) (*models.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var result models.AnalysisResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&result)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&result)
	default:
		return nil, fmt.Errorf("unsupported input %q: expected .json, .yaml or .yml", filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return &result, nil
}

func newSampleCmd() *cobra.Command {
	var output, address string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the sample analysis result",
		Long:  "Print the sample analysis result, a starting point for export input files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeResult(cmd, models.SampleResult(address), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", EncodingYAML, "yaml or json")
	cmd.Flags().StringVar(&address, "address", "", "property address for the sample")

	return cmd
}

func writeResult(cmd *cobra.Command, result *models.AnalysisResult, encoding string) error {
	w := cmd.OutOrStdout()

	switch strings.ToLower(encoding) {
	case EncodingYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case EncodingJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		return errors.New("unsupported output " + encoding + ": use yaml or json")
	}
}
