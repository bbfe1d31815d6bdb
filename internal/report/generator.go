// Package report renders a completed underwriting analysis into downloadable
// artifacts: a three-sheet spreadsheet and a single-page PDF report.
//
// A Generator holds only immutable configuration. Every call works on its own
// buffers, so one Generator can serve concurrent exports.
package report

import (
	"errors"
	"time"

	"github.com/stwalsh4118/underwriter/internal/models"
	"github.com/stwalsh4118/underwriter/internal/underwriting"
)

// Format identifies an export type.
type Format string

// Supported export formats.
const (
	FormatSpreadsheet Format = "xlsx"
	FormatDocument    Format = "pdf"
)

// Extension is the file extension for the format.
func (f Format) Extension() string {
	return string(f)
}

// Label is the user-facing name of the export ("spreadsheet", "document").
func (f Format) Label() string {
	switch f {
	case FormatSpreadsheet:
		return "spreadsheet"
	case FormatDocument:
		return "document"
	default:
		return string(f)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSpreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatDocument:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat accepts "xlsx"/"spreadsheet" and "pdf"/"document".
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "xlsx", "spreadsheet", "excel":
		return FormatSpreadsheet, true
	case "pdf", "document":
		return FormatDocument, true
	}
	return "", false
}

// Artifact is a fully rendered export. Data is only ever a complete file.
type Artifact struct {
	GeneratedAt time.Time
	Format      Format
	Filename    string
	ContentType string
	Data        []byte
	// Overflow is set when document content ran past the printable page area.
	Overflow bool
}

// Generator renders analysis results.
type Generator struct {
	clock       func() time.Time
	assumptions underwriting.Assumptions
	layout      Layout
}

// Option configures a Generator.
type Option func(*Generator)

// WithAssumptions overrides the financial model assumptions.
func WithAssumptions(a underwriting.Assumptions) Option {
	return func(g *Generator) {
		g.assumptions = a
	}
}

// WithClock sets the time source for generation dates.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		g.clock = clock
	}
}

// WithLayout overrides the document page geometry.
func WithLayout(l Layout) Option {
	return func(g *Generator) {
		g.layout = l
	}
}

// NewGenerator creates a Generator with default assumptions and layout.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		clock:       time.Now,
		assumptions: underwriting.DefaultAssumptions(),
		layout:      DefaultLayout(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Assumptions returns the financial model assumptions in use.
func (g *Generator) Assumptions() underwriting.Assumptions {
	return g.assumptions
}

// Spreadsheet renders the Summary, Financial Model and Risk Analysis sheets.
func (g *Generator) Spreadsheet(result *models.AnalysisResult) (*Artifact, error) {
	if err := checkInput(result); err != nil {
		return nil, err
	}
	if err := checkCellLengths(result); err != nil {
		return nil, err
	}

	now := g.clock()
	data, err := renderSpreadsheet(result, g.assumptions.Derive(result.Financials), g.assumptions, now)
	if err != nil {
		return nil, exportError(FormatSpreadsheet, err)
	}

	return g.artifact(FormatSpreadsheet, result, now, data), nil
}

// Document renders the single-page PDF report. Content that runs past the
// page is not moved to a new page; it is flagged via Artifact.Overflow.
func (g *Generator) Document(result *models.AnalysisResult) (*Artifact, error) {
	if err := checkInput(result); err != nil {
		return nil, err
	}

	now := g.clock()
	doc, err := renderDocument(result, g.layout, now)
	if err != nil {
		return nil, exportError(FormatDocument, err)
	}

	a := g.artifact(FormatDocument, result, now, doc.data)
	a.Overflow = doc.overflow
	return a, nil
}

// Render dispatches to the renderer for format.
func (g *Generator) Render(format Format, result *models.AnalysisResult) (*Artifact, error) {
	switch format {
	case FormatSpreadsheet:
		return g.Spreadsheet(result)
	case FormatDocument:
		return g.Document(result)
	default:
		return nil, exportError(format, errors.New("unsupported format"))
	}
}

func (g *Generator) artifact(format Format, result *models.AnalysisResult, now time.Time, data []byte) *Artifact {
	return &Artifact{
		GeneratedAt: now,
		Format:      format,
		Filename:    Filename(result.PropertyInfo.Address, format.Extension(), now),
		ContentType: format.ContentType(),
		Data:        data,
	}
}

// checkInput enforces the renderer precondition and input contract.
func checkInput(result *models.AnalysisResult) error {
	if result == nil {
		return ErrMissingResult
	}

	err := result.Validate()
	if err == nil {
		return nil
	}

	var invalid *models.InvalidField
	if errors.As(err, &invalid) {
		return &FieldError{Field: invalid.Field, Reason: invalid.Reason}
	}
	return &FieldError{Field: "result", Reason: err.Error()}
}
