package underwriting

import (
	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/underwriter/internal/models"
)

// ExpenseLine is a computed operating expense.
type ExpenseLine struct {
	Key    string
	Label  string
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// Metrics are the derived figures shown in the financial model.
//
// Expenses follow the fixed assumption rates and are not reconciled against
// the supplied net operating income.
type Metrics struct {
	PurchasePrice        decimal.Decimal
	DownPayment          decimal.Decimal
	LoanAmount           decimal.Decimal
	GrossRent            decimal.Decimal
	VacancyLoss          decimal.Decimal
	EffectiveGrossIncome decimal.Decimal
	TotalExpenses        decimal.Decimal
	Expenses             []ExpenseLine
}

// LoanAmount is purchasePrice × (1 - down payment).
func (a Assumptions) LoanAmount(purchasePrice float64) decimal.Decimal {
	return decimal.NewFromFloat(purchasePrice).Mul(a.LoanRatio())
}

// DownPaymentAmount is the equity portion, purchasePrice - LoanAmount, so the
// two always sum back to the purchase price.
func (a Assumptions) DownPaymentAmount(purchasePrice float64) decimal.Decimal {
	return decimal.NewFromFloat(purchasePrice).Sub(a.LoanAmount(purchasePrice))
}

// VacancyLoss is grossRent × vacancy.
func (a Assumptions) VacancyLoss(grossRent float64) decimal.Decimal {
	return decimal.NewFromFloat(grossRent).Mul(a.Vacancy)
}

// EffectiveGrossIncome is grossRent × (1 - vacancy).
func (a Assumptions) EffectiveGrossIncome(grossRent float64) decimal.Decimal {
	return decimal.NewFromFloat(grossRent).Sub(a.VacancyLoss(grossRent))
}

// ExpenseLines computes each expense as a fraction of gross rent, in
// assumption order.
func (a Assumptions) ExpenseLines(grossRent float64) []ExpenseLine {
	rent := decimal.NewFromFloat(grossRent)
	lines := make([]ExpenseLine, 0, len(a.Expenses))
	for _, e := range a.Expenses {
		lines = append(lines, ExpenseLine{
			Key:    e.Key,
			Label:  e.Label,
			Rate:   e.Rate,
			Amount: rent.Mul(e.Rate),
		})
	}
	return lines
}

// Derive computes every derived metric from the financials. Inputs must be
// finite; callers validate before calling.
func (a Assumptions) Derive(f models.Financials) Metrics {
	expenses := a.ExpenseLines(f.GrossRent)
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	return Metrics{
		PurchasePrice:        decimal.NewFromFloat(f.PurchasePrice),
		DownPayment:          a.DownPaymentAmount(f.PurchasePrice),
		LoanAmount:           a.LoanAmount(f.PurchasePrice),
		GrossRent:            decimal.NewFromFloat(f.GrossRent),
		VacancyLoss:          a.VacancyLoss(f.GrossRent),
		EffectiveGrossIncome: a.EffectiveGrossIncome(f.GrossRent),
		TotalExpenses:        total,
		Expenses:             expenses,
	}
}
