package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stwalsh4118/underwriter/internal/models"
)

// Layout is the page geometry of the PDF report, in millimetres.
type Layout struct {
	PageSize     string
	Margin       float64
	LineHeight   float64
	FooterOffset float64
}

// DefaultLayout is an A4 page with 20mm margins and 8mm lines; the footer sits
// 10mm above the bottom edge.
func DefaultLayout() Layout {
	return Layout{
		PageSize:     "A4",
		Margin:       20,
		LineHeight:   8,
		FooterOffset: 10,
	}
}

// RGB is a text or fill color.
type RGB struct {
	R, G, B int
}

var (
	colorText    = RGB{31, 41, 55}
	colorMuted   = RGB{107, 114, 128}
	colorHeading = RGB{37, 99, 235}
	colorPass    = RGB{22, 163, 74}
	colorFail    = RGB{220, 38, 38}
	colorAmber   = RGB{217, 119, 6}

	fillPass = RGB{220, 252, 231}
	fillFail = RGB{254, 226, 226}
)

// Glyphs shown in the recommendation banner. They are drawn with the
// ZapfDingbats core font, where "4" is a check mark and "8" a cross.
const (
	glyphPass = "✔"
	glyphFail = "✘"
)

var dingbats = map[string]string{
	glyphPass: "4",
	glyphFail: "8",
}

const (
	fontBody     = "Helvetica"
	fontDingbats = "ZapfDingbats"
)

// Document sections, in emission order.
const (
	sectionTitle          = "title"
	sectionRecommendation = "recommendation"
	sectionProperty       = "property"
	sectionFinancials     = "financials"
	sectionMarket         = "market"
	sectionRisks          = "risks"
	sectionFooter         = "footer"
)

// TextRun is one line of text placed on the page.
type TextRun struct {
	Section string
	Text    string
	Font    string
	Style   string
	X, Y    float64
	Width   float64
	Size    float64
	Color   RGB
}

// ColumnSync records where a two-column section left each column and where
// the shared cursor resumed.
type ColumnSync struct {
	Section string
	LeftY   float64
	RightY  float64
	Y       float64
}

type documentResult struct {
	data     []byte
	runs     []TextRun
	columns  []ColumnSync
	cursor   float64
	overflow bool
}

// docWriter tracks the running cursor and records every text run it draws.
type docWriter struct {
	pdf     *fpdf.Fpdf
	tr      func(string) string
	layout  Layout
	section string
	font    string
	style   string
	size    float64
	color   RGB
	pageW   float64
	pageH   float64
	y       float64
	runs    []TextRun
	columns []ColumnSync
}

func newDocWriter(layout Layout, title string, now time.Time) *docWriter {
	pdf := fpdf.New("P", "mm", layout.PageSize, "")
	pdf.SetMargins(layout.Margin, layout.Margin, layout.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(title, true)
	pdf.SetCreator(generatorName, true)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	return &docWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		layout: layout,
		pageW:  w,
		pageH:  h,
		y:      layout.Margin,
	}
}

func (d *docWriter) contentWidth() float64 {
	return d.pageW - 2*d.layout.Margin
}

func (d *docWriter) setFont(family, style string, size float64) {
	d.font, d.style, d.size = family, style, size
	d.pdf.SetFont(family, style, size)
}

func (d *docWriter) setColor(c RGB) {
	d.color = c
	d.pdf.SetTextColor(c.R, c.G, c.B)
}

// emit draws drawn at (x, y) and records it as display.
func (d *docWriter) emit(x, y float64, display, drawn string) {
	d.pdf.Text(x, y, drawn)
	d.runs = append(d.runs, TextRun{
		Section: d.section,
		Text:    display,
		Font:    d.font,
		Style:   d.style,
		X:       x,
		Y:       y,
		Width:   d.pdf.GetStringWidth(drawn),
		Size:    d.size,
		Color:   d.color,
	})
}

// wrap splits s into lines no wider than width in the current font. A word
// that is wider than width on its own is broken between runes.
func (d *docWriter) wrap(s string, width float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := ""
	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if d.fits(candidate, width) {
			line = candidate
			continue
		}

		if line != "" {
			lines = append(lines, line)
		}
		for w != "" && !d.fits(w, width) {
			var head string
			head, w = d.splitWord(w, width)
			lines = append(lines, head)
		}
		line = w
	}

	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

func (d *docWriter) fits(s string, width float64) bool {
	return d.pdf.GetStringWidth(d.tr(s)) <= width
}

// splitWord returns the longest prefix of w that fits width and the rest. The
// prefix holds at least one rune so wrapping always advances.
func (d *docWriter) splitWord(w string, width float64) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && d.fits(string(runes[:n+1]), width) {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

// blockAt writes s wrapped to width starting at y and returns the cursor
// advanced by one line height per wrapped line.
func (d *docWriter) blockAt(x, y float64, s string, width float64) float64 {
	lines := d.wrap(s, width)
	for i, line := range lines {
		d.emit(x, y+float64(i)*d.layout.LineHeight, line, d.tr(line))
	}
	return y + float64(len(lines))*d.layout.LineHeight
}

func (d *docWriter) block(x float64, s string, width float64) {
	d.y = d.blockAt(x, d.y, s, width)
}

func (d *docWriter) gap() {
	d.y += d.layout.LineHeight / 2
}

func (d *docWriter) heading(title string) {
	d.setFont(fontBody, "B", 14)
	d.setColor(colorHeading)
	d.block(d.layout.Margin, title, d.contentWidth())
}

// twoColumns writes left and right from the same starting y and resumes the
// main cursor below whichever column ended lower.
func (d *docWriter) twoColumns(left, right []string) {
	half := d.contentWidth() / 2
	colWidth := half - 5
	leftX := d.layout.Margin
	rightX := d.layout.Margin + half

	leftY, rightY := d.y, d.y
	for _, s := range left {
		leftY = d.blockAt(leftX, leftY, s, colWidth)
	}
	for _, s := range right {
		rightY = d.blockAt(rightX, rightY, s, colWidth)
	}

	d.y = leftY
	if rightY > d.y {
		d.y = rightY
	}
	d.columns = append(d.columns, ColumnSync{Section: d.section, LeftY: leftY, RightY: rightY, Y: d.y})
}

func riskColor(level models.RiskLevel) RGB {
	switch level {
	case models.RiskLow:
		return colorPass
	case models.RiskMedium:
		return colorAmber
	default:
		return colorFail
	}
}

func renderDocument(r *models.AnalysisResult, layout Layout, now time.Time) (*documentResult, error) {
	d := newDocWriter(layout, "CRE Underwriting Analysis - "+r.PropertyInfo.Address, now)
	margin := layout.Margin
	width := d.contentWidth()
	p, f, m := r.PropertyInfo, r.Financials, r.MarketData

	d.section = sectionTitle
	d.setFont(fontBody, "B", 20)
	d.setColor(colorText)
	d.block(margin, "Commercial Real Estate Analysis Report", width)
	d.setFont(fontBody, "", 10)
	d.setColor(colorMuted)
	d.block(margin, "Generated: "+now.Format(filenameDateLayout), width)
	d.gap()

	d.section = sectionRecommendation
	label, glyph, color, fill := "DEAL APPROVED", glyphPass, colorPass, fillPass
	if r.Recommendation != models.RecommendationPass {
		label, glyph, color, fill = "DEAL REJECTED", glyphFail, colorFail, fillFail
	}
	bannerHeight := 2*layout.LineHeight + 4
	d.pdf.SetFillColor(fill.R, fill.G, fill.B)
	d.pdf.Rect(margin, d.y-layout.LineHeight+2, width, bannerHeight, "F")
	d.setFont(fontDingbats, "", 16)
	d.setColor(color)
	d.emit(margin+4, d.y+2, glyph, dingbats[glyph])
	d.setFont(fontBody, "B", 16)
	d.block(margin+14, label, width-14)
	d.setFont(fontBody, "", 11)
	d.block(margin+14, fmt.Sprintf("Confidence Score: %d%%", r.ConfidenceScore), width-14)
	d.gap()

	d.section = sectionProperty
	d.heading("Property Information")
	d.setFont(fontBody, "", 11)
	d.setColor(colorText)
	for _, s := range []string{
		"Address: " + p.Address,
		"Units: " + formatCount(p.Units),
		fmt.Sprintf("Year Built: %d", p.YearBuilt),
		"Square Feet: " + formatCount(p.SquareFeet),
		"Lot Size: " + p.LotSize,
	} {
		d.block(margin, s, width)
	}
	d.gap()

	d.section = sectionFinancials
	d.heading("Key Financial Metrics")
	d.setFont(fontBody, "", 11)
	d.setColor(colorText)
	d.twoColumns(
		[]string{
			"Cap Rate: " + formatPercent(f.CapRate),
			"Cash-on-Cash Return: " + formatPercent(f.CocReturn),
			"DSCR: " + formatNumber(f.DSCR),
			"NOI: " + formatCurrencyFloat(f.NetOperatingIncome),
		},
		[]string{
			"Purchase Price: " + formatCurrencyFloat(f.PurchasePrice),
			"Cash Required: " + formatCurrencyFloat(f.CashRequired),
			"Gross Rent: " + formatCurrencyFloat(f.GrossRent),
		},
	)
	d.gap()

	d.section = sectionMarket
	d.heading("Market Data")
	d.setFont(fontBody, "", 11)
	d.setColor(colorText)
	d.twoColumns(
		[]string{
			"Avg Rent PSF: " + formatCurrencyFloat(m.AvgRentPSF),
			"Market Cap Rate: " + formatPercent(m.MarketCapRate),
			"Crime Score: " + m.CrimeScore,
		},
		[]string{
			"School Rating: " + formatNumber(m.SchoolRating) + "/10",
			"Walk Score: " + formatNumber(m.WalkScore),
			"Median Income: " + formatCurrencyFloat(m.MedianIncome),
		},
	)
	d.gap()

	d.section = sectionRisks
	d.heading("Risk Assessment")
	for _, risk := range r.RiskFactors {
		d.setFont(fontBody, "B", 11)
		d.setColor(riskColor(risk.Type))
		d.block(margin, risk.Type.Upper()+" RISK", width)
		d.setFont(fontBody, "", 10)
		d.setColor(colorText)
		d.block(margin+5, risk.Message, width-5)
	}

	footerY := d.pageH - layout.FooterOffset
	res := &documentResult{
		cursor:   d.y,
		overflow: d.y > footerY,
	}

	d.section = sectionFooter
	d.setFont(fontBody, "I", 8)
	d.setColor(colorMuted)
	d.emit(margin, footerY, "Generated by "+generatorName, d.tr("Generated by "+generatorName))
	page := fmt.Sprintf("Page %d", d.pdf.PageNo())
	d.emit(d.pageW-margin-d.pdf.GetStringWidth(page), footerY, page, page)

	if err := d.pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out report: %w", err)
	}

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	res.data = buf.Bytes()
	res.runs = d.runs
	res.columns = d.columns
	return res, nil
}
