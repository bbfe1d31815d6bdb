package report

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/stwalsh4118/underwriter/internal/models"
	"github.com/stwalsh4118/underwriter/internal/underwriting"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary        = "Summary"
	SheetFinancialModel = "Financial Model"
	SheetRiskAnalysis   = "Risk Analysis"
)

const (
	minLabelWidth = 25
	valueWidth    = 22
	generatorName = "CRE Underwriter"
)

// sheetRow is one worksheet row. A nil cells slice leaves the row blank.
type sheetRow struct {
	cells   []string
	heading bool
}

func heading(title string) sheetRow {
	return sheetRow{cells: []string{title}, heading: true}
}

func labeled(label, value string) sheetRow {
	return sheetRow{cells: []string{label, value}}
}

var blank = sheetRow{}

func summaryRows(r *models.AnalysisResult, now time.Time) []sheetRow {
	p, f, m := r.PropertyInfo, r.Financials, r.MarketData

	return []sheetRow{
		heading("CRE UNDERWRITING ANALYSIS"),
		labeled("Generated:", now.Format(filenameDateLayout)),
		blank,
		heading("PROPERTY INFORMATION"),
		labeled("Address:", p.Address),
		labeled("Units:", formatCount(p.Units)),
		labeled("Year Built:", fmt.Sprintf("%d", p.YearBuilt)),
		labeled("Square Feet:", formatCount(p.SquareFeet)),
		labeled("Lot Size:", p.LotSize),
		blank,
		heading("FINANCIAL METRICS"),
		labeled("Gross Rent:", formatCurrencyFloat(f.GrossRent)),
		labeled("Net Operating Income:", formatCurrencyFloat(f.NetOperatingIncome)),
		labeled("Purchase Price:", formatCurrencyFloat(f.PurchasePrice)),
		labeled("Cash Required:", formatCurrencyFloat(f.CashRequired)),
		labeled("Cap Rate:", formatPercent(f.CapRate)),
		labeled("Cash-on-Cash Return:", formatPercent(f.CocReturn)),
		labeled("DSCR:", formatNumber(f.DSCR)),
		blank,
		heading("MARKET DATA"),
		labeled("Avg Rent PSF:", formatCurrencyFloat(m.AvgRentPSF)),
		labeled("Market Cap Rate:", formatPercent(m.MarketCapRate)),
		labeled("Crime Score:", m.CrimeScore),
		labeled("School Rating:", formatNumber(m.SchoolRating)+"/10"),
		labeled("Walk Score:", formatNumber(m.WalkScore)),
		labeled("Median Income:", formatCurrencyFloat(m.MedianIncome)),
		blank,
		heading("RECOMMENDATION"),
		labeled("Status:", r.Recommendation.Upper()),
		labeled("Confidence Score:", fmt.Sprintf("%d%%", r.ConfidenceScore)),
	}
}

func financialModelRows(f models.Financials, dm underwriting.Metrics, a underwriting.Assumptions) []sheetRow {
	rows := []sheetRow{
		heading("FINANCIAL MODEL"),
		blank,
		heading("ACQUISITION"),
		labeled("Purchase Price", formatCurrency(dm.PurchasePrice)),
		labeled(fmt.Sprintf("Down Payment (%s)", formatRate(a.DownPayment)), formatCurrency(dm.DownPayment)),
		labeled(fmt.Sprintf("Loan Amount (%s)", formatRate(a.LoanRatio())), formatCurrency(dm.LoanAmount)),
		labeled("Interest Rate", formatRate(a.InterestRate)),
		labeled("Loan Term", fmt.Sprintf("%d years", a.LoanTermYears)),
		blank,
		heading("INCOME"),
		labeled("Gross Rental Income", formatCurrency(dm.GrossRent)),
		labeled(fmt.Sprintf("Less: Vacancy (%s)", formatRate(a.Vacancy)), formatCurrency(dm.VacancyLoss.Neg())),
		labeled("Effective Gross Income", formatCurrency(dm.EffectiveGrossIncome)),
		blank,
		heading("OPERATING EXPENSES"),
	}

	for _, e := range dm.Expenses {
		rows = append(rows, labeled(fmt.Sprintf("%s (%s)", e.Label, formatRate(e.Rate)), formatCurrency(e.Amount)))
	}

	return append(rows,
		labeled(fmt.Sprintf("Total Operating Expenses (%s)", formatRate(a.TotalExpenseRate())), formatCurrency(dm.TotalExpenses)),
		blank,
		labeled("Net Operating Income", formatCurrencyFloat(f.NetOperatingIncome)),
		blank,
		heading("RETURN METRICS"),
		labeled("Cap Rate", formatPercent(f.CapRate)),
		labeled("Cash-on-Cash Return", formatPercent(f.CocReturn)),
		labeled("DSCR", formatNumber(f.DSCR)),
	)
}

func riskRows(risks []models.RiskFactor) []sheetRow {
	rows := make([]sheetRow, 0, len(risks)+1)
	rows = append(rows, sheetRow{cells: []string{"Risk Factor", "Risk Level", "Description"}, heading: true})
	for _, risk := range risks {
		rows = append(rows, sheetRow{cells: []string{risk.Type.Title(), risk.Type.Upper(), risk.Message}})
	}
	return rows
}

// checkCellLengths rejects free-text values longer than a worksheet cell can
// hold. excelize would otherwise truncate them silently.
func checkCellLengths(r *models.AnalysisResult) error {
	fields := []struct {
		path  string
		value string
	}{
		{"propertyInfo.address", r.PropertyInfo.Address},
		{"propertyInfo.lotSize", r.PropertyInfo.LotSize},
		{"marketData.crimeScore", r.MarketData.CrimeScore},
	}
	for i, risk := range r.RiskFactors {
		fields = append(fields, struct {
			path  string
			value string
		}{fmt.Sprintf("riskFactors[%d].message", i), risk.Message})
	}

	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > excelize.TotalCellChars {
			return &FieldError{
				Field:  f.path,
				Reason: fmt.Sprintf("exceeds the %d character cell limit", excelize.TotalCellChars),
			}
		}
	}
	return nil
}

// labelWidth sizes the label column to the longest label, never below
// minLabelWidth character widths.
func labelWidth(rows []sheetRow) float64 {
	width := minLabelWidth
	for _, r := range rows {
		if len(r.cells) > 0 && len(r.cells[0])+2 > width {
			width = len(r.cells[0]) + 2
		}
	}
	return float64(width)
}

// renderSpreadsheet builds the whole workbook in memory. No bytes are returned
// unless every sheet was written and serialized.
func renderSpreadsheet(r *models.AnalysisResult, dm underwriting.Metrics, a underwriting.Assumptions, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create heading style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	for _, name := range []string{SheetFinancialModel, SheetRiskAnalysis} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
	}

	summary := summaryRows(r, now)
	model := financialModelRows(r.Financials, dm, a)

	sheets := []struct {
		name   string
		rows   []sheetRow
		widths []float64
	}{
		{SheetSummary, summary, []float64{labelWidth(summary), valueWidth}},
		{SheetFinancialModel, model, []float64{labelWidth(model), valueWidth}},
		{SheetRiskAnalysis, riskRows(r.RiskFactors), []float64{15, 12, 70}},
	}

	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows, boldStyle); err != nil {
			return nil, err
		}
		if err := setColumnWidths(f, s.name, s.widths); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(0)

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "CRE Underwriting Analysis - " + r.PropertyInfo.Address,
		Creator: generatorName,
		Created: now.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows []sheetRow, headingStyle int) error {
	for i, row := range rows {
		if len(row.cells) == 0 {
			continue
		}

		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		values := make([]interface{}, len(row.cells))
		for j, c := range row.cells {
			values[j] = c
		}
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}

		if row.heading {
			end, err := excelize.CoordinatesToCellName(len(row.cells), i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, start, end, headingStyle); err != nil {
				return fmt.Errorf("failed to style %s row %d: %w", sheet, i+1, err)
			}
		}
	}
	return nil
}

func setColumnWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("failed to size %s column %s: %w", sheet, col, err)
		}
	}
	return nil
}
