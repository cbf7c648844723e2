package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"spendwise/internal/core"
)

// Plain writes an aligned, uncolored listing suitable for pipes.
func (f *Formatter) Plain(w io.Writer, txs []core.Transaction, totals core.Totals) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if len(txs) == 0 {
		fmt.Fprintln(tw, EmptyHistory)
	} else {
		fmt.Fprintln(tw, "ID\tDESCRIPTION\tKIND\tAMOUNT")
		for _, t := range txs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, plainCell(t.Description), strings.ToUpper(t.Kind.String()), f.Signed(t))
		}
	}
	fmt.Fprintln(tw)
	if err := f.writeTotals(tw, totals); err != nil {
		return err
	}
	return tw.Flush()
}

// Totals writes the three totals lines.
func (f *Formatter) Totals(w io.Writer, totals core.Totals) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := f.writeTotals(tw, totals); err != nil {
		return err
	}
	return tw.Flush()
}

func (f *Formatter) writeTotals(w io.Writer, totals core.Totals) error {
	_, err := fmt.Fprintf(w, "Income\t+%s\nExpense\t-%s\nBalance\t%s\n",
		f.Amount(totals.Income), f.Amount(totals.Expense), f.Amount(totals.Balance))
	return err
}

var plainCellReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// plainCell keeps a value on one tabwriter cell.
func plainCell(s string) string {
	return plainCellReplacer.Replace(s)
}
