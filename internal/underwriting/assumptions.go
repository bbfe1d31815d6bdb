// Package underwriting computes the figures that are derived from a deal's
// financials rather than supplied by the analysis: loan sizing, effective gross
// income and the assumption-based operating expense breakdown.
package underwriting

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Expense keys, in report order.
const (
	ExpenseManagement  = "management"
	ExpenseMaintenance = "maintenance"
	ExpenseTaxes       = "taxes"
	ExpenseInsurance   = "insurance"
	ExpenseUtilities   = "utilities"
	ExpenseOther       = "other"
)

// ExpenseRate is one operating expense line expressed as a fraction of gross rent.
type ExpenseRate struct {
	Key   string
	Label string
	Rate  decimal.Decimal
}

// Assumptions are the presentation constants of the financial model. They are
// not derived from the analysis result.
type Assumptions struct {
	DownPayment   decimal.Decimal
	InterestRate  decimal.Decimal
	Vacancy       decimal.Decimal
	Expenses      []ExpenseRate
	LoanTermYears int
}

// DefaultAssumptions returns 30% down, 6.5% over 30 years, 5% vacancy and
// operating expenses totalling 33% of gross rent.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DownPayment:   decimal.RequireFromString("0.30"),
		InterestRate:  decimal.RequireFromString("0.065"),
		LoanTermYears: 30,
		Vacancy:       decimal.RequireFromString("0.05"),
		Expenses: []ExpenseRate{
			{Key: ExpenseManagement, Label: "Management", Rate: decimal.RequireFromString("0.08")},
			{Key: ExpenseMaintenance, Label: "Maintenance", Rate: decimal.RequireFromString("0.05")},
			{Key: ExpenseTaxes, Label: "Property Taxes", Rate: decimal.RequireFromString("0.12")},
			{Key: ExpenseInsurance, Label: "Insurance", Rate: decimal.RequireFromString("0.03")},
			{Key: ExpenseUtilities, Label: "Utilities", Rate: decimal.RequireFromString("0.02")},
			{Key: ExpenseOther, Label: "Other", Rate: decimal.RequireFromString("0.03")},
		},
	}
}

// LoanRatio is the financed share of the purchase price (1 - down payment).
func (a Assumptions) LoanRatio() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(a.DownPayment)
}

// TotalExpenseRate sums the expense line rates.
func (a Assumptions) TotalExpenseRate() decimal.Decimal {
	total := decimal.Zero
	for _, e := range a.Expenses {
		total = total.Add(e.Rate)
	}
	return total
}

// WithExpenseRate returns a copy with the rate for key replaced. Unknown keys
// are appended with the key as label.
func (a Assumptions) WithExpenseRate(key string, rate decimal.Decimal) Assumptions {
	expenses := make([]ExpenseRate, len(a.Expenses))
	copy(expenses, a.Expenses)

	for i := range expenses {
		if expenses[i].Key == key {
			expenses[i].Rate = rate
			a.Expenses = expenses
			return a
		}
	}

	a.Expenses = append(expenses, ExpenseRate{Key: key, Label: key, Rate: rate})
	return a
}

// Validate checks that every rate is a fraction in [0, 1].
func (a Assumptions) Validate() error {
	if err := checkFraction("down payment", a.DownPayment); err != nil {
		return err
	}
	if err := checkFraction("interest rate", a.InterestRate); err != nil {
		return err
	}
	if err := checkFraction("vacancy", a.Vacancy); err != nil {
		return err
	}
	if a.LoanTermYears < 1 {
		return fmt.Errorf("loan term must be at least 1 year, got %d", a.LoanTermYears)
	}
	for _, e := range a.Expenses {
		if err := checkFraction(e.Key+" expense", e.Rate); err != nil {
			return err
		}
	}
	if total := a.TotalExpenseRate(); total.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("total expense rate must not exceed 1, got %s", total)
	}
	return nil
}

func checkFraction(name string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s rate must be between 0 and 1, got %s", name, v)
	}
	return nil
}
