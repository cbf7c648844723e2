package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"spendwise/internal/core"
)

// EmptyHistory is shown in place of rows when the ledger is empty.
const EmptyHistory = "Your history is empty."

// Markdown lays out the totals and the ledger, newest first.
func (f *Formatter) Markdown(txs []core.Transaction, totals core.Totals) string {
	var b strings.Builder

	b.WriteString("# SpendWise\n\n")
	b.WriteString("| Balance | Income | Expense |\n")
	b.WriteString("|--:|--:|--:|\n")
	fmt.Fprintf(&b, "| %s | +%s | -%s |\n\n",
		f.Amount(totals.Balance), f.Amount(totals.Income), f.Amount(totals.Expense))

	b.WriteString("## History\n\n")
	if len(txs) == 0 {
		fmt.Fprintf(&b, "_%s_\n", EmptyHistory)
		return b.String()
	}

	b.WriteString("| | ID | Description | Kind | Amount |\n")
	b.WriteString("|---|--:|---|---|--:|\n")
	for _, t := range txs {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n",
			Arrow(t.Kind), t.ID, escapeCell(t.Description), strings.ToUpper(t.Kind.String()), f.Signed(t))
	}
	return b.String()
}

// Terminal renders markdown for a terminal of the given width using the
// auto-detected glamour style.
func Terminal(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return plainCell(s)
}
