// Package render turns ledger snapshots into text. It holds no ledger state
// and never mutates anything; callers re-render after every change.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// Formatter writes amounts as currency text.
type Formatter struct {
	currency *money.Currency
}

func NewFormatter(code string) (*Formatter, error) {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return nil, fmt.Errorf("unknown currency code %q", code)
	}
	return &Formatter{currency: cur}, nil
}

// Currency returns the ISO code in use.
func (f *Formatter) Currency() string {
	return f.currency.Code
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Amount formats d in the currency, rounded to its minor unit.
func (f *Formatter) Amount(d decimal.Decimal) string {
	minor := d.Shift(int32(f.currency.Fraction)).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return f.wideAmount(minor)
	}
	return f.currency.Formatter().Format(minor.IntPart())
}

// wideAmount lays out minor units that do not fit in an int64 the same way
// money.Formatter.Format does.
func (f *Formatter) wideAmount(minor decimal.Decimal) string {
	fraction := f.currency.Fraction
	whole, frac, _ := strings.Cut(minor.Abs().Shift(-int32(fraction)).StringFixed(int32(fraction)), ".")

	if f.currency.Thousand != "" {
		for i := len(whole) - 3; i > 0; i -= 3 {
			whole = whole[:i] + f.currency.Thousand + whole[i:]
		}
	}
	if frac != "" {
		whole += f.currency.Decimal + frac
	}

	s := strings.Replace(f.currency.Template, "1", whole, 1)
	s = strings.Replace(s, "$", f.currency.Grapheme, 1)
	if minor.IsNegative() {
		s = "-" + s
	}
	return s
}

// Signed prefixes income with "+" and expense with "-".
func (f *Formatter) Signed(t core.Transaction) string {
	if t.Kind == core.Income {
		return "+" + f.Amount(t.Amount)
	}
	return "-" + f.Amount(t.Amount)
}

// Arrow is the direction marker shown next to a row.
func Arrow(k core.Kind) string {
	if k == core.Income {
		return "↑"
	}
	return "↓"
}
