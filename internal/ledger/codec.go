package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// record is the persisted shape of a transaction. Text and Type are the
// field names used by older browser exports and are read but never written.
type record struct {
	ID          int64       `json:"id"`
	Description string      `json:"description,omitempty"`
	Amount      json.Number `json:"amount"`
	Kind        string      `json:"kind,omitempty"`

	Text string `json:"text,omitempty"`
	Type string `json:"type,omitempty"`
}

// Encode serializes the ledger as a JSON array, newest first.
func Encode(txs []core.Transaction) ([]byte, error) {
	records := make([]record, len(txs))
	for i, t := range txs {
		records[i] = record{
			ID:          t.ID,
			Description: t.Description,
			Amount:      json.Number(t.Amount.String()),
			Kind:        t.Kind.String(),
		}
	}
	return json.Marshal(records)
}

// Decode parses a persisted ledger. The document itself must be a JSON
// array; individual entries that cannot be used are returned in skipped
// instead of failing the whole document.
func Decode(data []byte) (txs []core.Transaction, skipped []error, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode ledger: %w", err)
	}

	seen := make(map[int64]struct{}, len(raw))
	txs = make([]core.Transaction, 0, len(raw))
	for i, msg := range raw {
		t, err := decodeRecord(msg)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if _, dup := seen[t.ID]; dup {
			skipped = append(skipped, fmt.Errorf("entry %d: duplicate id %d", i, t.ID))
			continue
		}
		seen[t.ID] = struct{}{}
		txs = append(txs, t)
	}
	return txs, skipped, nil
}

func decodeRecord(msg json.RawMessage) (core.Transaction, error) {
	var r record
	if err := json.Unmarshal(msg, &r); err != nil {
		return core.Transaction{}, err
	}

	desc := r.Description
	if desc == "" {
		desc = r.Text
	}
	kind := r.Kind
	if kind == "" {
		kind = r.Type
	}
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return core.Transaction{}, core.ErrInvalidAmount
	}

	t := core.Transaction{
		ID:          r.ID,
		Description: desc,
		Amount:      amount,
		Kind:        core.Kind(kind),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
