package core

import "github.com/shopspring/decimal"

// Totals is derived from a ledger and never stored.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// ComputeTotals sums income and expense amounts in a single pass. Anything
// that is not income counts as an expense.
func ComputeTotals(txs []Transaction) Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		if t.Kind == Income {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// Equal compares totals numerically.
func (t Totals) Equal(o Totals) bool {
	return t.Income.Equal(o.Income) &&
		t.Expense.Equal(o.Expense) &&
		t.Balance.Equal(o.Balance)
}
