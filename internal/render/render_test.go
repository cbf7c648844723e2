package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

func usd(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter("usd")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	return f
}

func sample() ([]core.Transaction, core.Totals) {
	txs := []core.Transaction{
		{ID: 2, Description: "Rent", Amount: decimal.RequireFromString("400"), Kind: core.Expense},
		{ID: 1, Description: "Salary", Amount: decimal.RequireFromString("1000"), Kind: core.Income},
	}
	return txs, core.ComputeTotals(txs)
}

func TestNewFormatterRejectsUnknownCurrency(t *testing.T) {
	if _, err := NewFormatter("XYZ"); err == nil {
		t.Fatal("expected error")
	}
	if got := usd(t).Currency(); got != "USD" {
		t.Fatalf("Currency() = %q", got)
	}
}

func TestFormatterAmount(t *testing.T) {
	f := usd(t)
	cases := map[string]string{
		"1000":    "$1,000.00",
		"0":       "$0.00",
		"3.5":     "$3.50",
		"0.005":   "$0.01",
		"-400":    "-$400.00",
		"1234567": "$1,234,567.00",
		// minor units past int64
		"100000000000000000":   "$100,000,000,000,000,000.00",
		"10000000000000000000": "$10,000,000,000,000,000,000.00",
		"-100000000000000000":  "-$100,000,000,000,000,000.00",
		"92233720368547758.07": "$92,233,720,368,547,758.07",
		"92233720368547758.08": "$92,233,720,368,547,758.08",
	}
	for in, want := range cases {
		if got := f.Amount(decimal.RequireFromString(in)); got != want {
			t.Errorf("Amount(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatterAmountZeroFraction(t *testing.T) {
	f, err := NewFormatter("JPY")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	small := f.Amount(decimal.RequireFromString("1234"))
	wide := f.Amount(decimal.RequireFromString("12345678901234567890"))
	if !strings.HasSuffix(small, "1,234") {
		t.Errorf("Amount(1234) = %q", small)
	}
	if !strings.HasSuffix(wide, "12,345,678,901,234,567,890") {
		t.Errorf("Amount(12345678901234567890) = %q", wide)
	}
	if strings.TrimSuffix(small, "1,234") != strings.TrimSuffix(wide, "12,345,678,901,234,567,890") {
		t.Errorf("wide amount layout %q differs from %q", wide, small)
	}
}

func TestTotalsPastInt64(t *testing.T) {
	f := usd(t)
	big := decimal.RequireFromString("60000000000000000")
	txs := []core.Transaction{
		{ID: 2, Description: "Bonus", Amount: big, Kind: core.Income},
		{ID: 1, Description: "Salary", Amount: big, Kind: core.Income},
	}
	var buf bytes.Buffer
	if err := f.Totals(&buf, core.ComputeTotals(txs)); err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if !strings.Contains(buf.String(), "+$120,000,000,000,000,000.00") {
		t.Errorf("income total overflowed:\n%s", buf.String())
	}
}

func TestFormatterSigned(t *testing.T) {
	f := usd(t)
	txs, _ := sample()
	if got := f.Signed(txs[0]); got != "-$400.00" {
		t.Errorf("expense = %q", got)
	}
	if got := f.Signed(txs[1]); got != "+$1,000.00" {
		t.Errorf("income = %q", got)
	}
}

func TestMarkdown(t *testing.T) {
	f := usd(t)
	txs, totals := sample()
	md := f.Markdown(txs, totals)

	for _, want := range []string{
		"| $600.00 | +$1,000.00 | -$400.00 |",
		"| ↓ | 2 | Rent | EXPENSE | -$400.00 |",
		"| ↑ | 1 | Salary | INCOME | +$1,000.00 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "Rent") > strings.Index(md, "Salary") {
		t.Errorf("rows must stay newest first")
	}

	empty := f.Markdown(nil, core.Totals{})
	if !strings.Contains(empty, EmptyHistory) {
		t.Errorf("empty ledger should say %q:\n%s", EmptyHistory, empty)
	}
}

func TestMarkdownEscapesPipes(t *testing.T) {
	f := usd(t)
	txs := []core.Transaction{{ID: 1, Description: "a|b", Amount: decimal.NewFromInt(1), Kind: core.Income}}
	if md := f.Markdown(txs, core.ComputeTotals(txs)); !strings.Contains(md, `a\|b`) {
		t.Fatalf("pipe not escaped:\n%s", md)
	}
}

func TestTerminal(t *testing.T) {
	f := usd(t)
	txs, totals := sample()
	out, err := Terminal(f.Markdown(txs, totals), 100)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !strings.Contains(out, "Salary") || !strings.Contains(out, "Rent") {
		t.Fatalf("rendered output lost rows:\n%s", out)
	}
}

func TestPlain(t *testing.T) {
	f := usd(t)
	txs, totals := sample()
	var buf bytes.Buffer
	if err := f.Plain(&buf, txs, totals); err != nil {
		t.Fatalf("Plain: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Rent", "EXPENSE", "-$400.00", "+$1,000.00", "Balance", "$600.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("plain output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := f.Plain(&buf, nil, core.Totals{}); err != nil {
		t.Fatalf("Plain: %v", err)
	}
	if !strings.HasPrefix(buf.String(), EmptyHistory) {
		t.Errorf("empty plain output = %q", buf.String())
	}
}

func TestPlainKeepsRowsOnOneLine(t *testing.T) {
	f := usd(t)
	txs := []core.Transaction{
		{ID: 2, Description: "Groceries\tand\nsnacks", Amount: decimal.NewFromInt(30), Kind: core.Expense},
		{ID: 1, Description: "Salary", Amount: decimal.NewFromInt(1000), Kind: core.Income},
	}
	var buf bytes.Buffer
	if err := f.Plain(&buf, txs, core.ComputeTotals(txs)); err != nil {
		t.Fatalf("Plain: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("unexpected output %q", buf.String())
	}
	row := lines[1]
	if !strings.Contains(row, "Groceries and snacks") || !strings.HasSuffix(strings.TrimRight(row, " "), "-$30.00") {
		t.Errorf("row split across cells: %q", row)
	}
	if got, want := strings.Index(row, "EXPENSE"), strings.Index(lines[0], "KIND"); got != want {
		t.Errorf("KIND column at %d in row, %d in header:\n%s", got, want, buf.String())
	}
}

func TestTotals(t *testing.T) {
	f := usd(t)
	_, totals := sample()
	var buf bytes.Buffer
	if err := f.Totals(&buf, totals); err != nil {
		t.Fatalf("Totals: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if !strings.HasSuffix(lines[2], "$600.00") {
		t.Errorf("balance line = %q", lines[2])
	}
}
