// Package ledger owns the ordered list of transactions and its durable copy.
//
// The Store is the only writer of the list. Every mutation rewrites the whole
// persisted document before the in-memory state changes, so callers either
// see the mutation fully applied or not at all.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	slot   storage.Slot
	logger *applog.Logger
	items  []core.Transaction // newest first
	ids    idSource

	subs    []subscription
	nextSub int
}

func New(slot storage.Slot, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Store{
		slot:   slot,
		logger: logger.WithComponent(applog.ComponentLedger),
		ids:    idSource{now: time.Now},
	}
}

// Open creates a store and loads it from slot.
func Open(ctx context.Context, slot storage.Slot, logger *applog.Logger) *Store {
	s := New(slot, logger)
	s.Load(ctx)
	return s
}

// Load replaces the in-memory ledger with the persisted one and returns a
// snapshot of it. A missing or unreadable slot, or a document that is not a
// ledger, yields an empty ledger; the problem is logged, never returned.
func (s *Store) Load(ctx context.Context) []core.Transaction {
	txs := s.read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = txs
	for _, t := range txs {
		s.ids.observe(t.ID)
	}
	return cloneTransactions(s.items)
}

func (s *Store) read(ctx context.Context) []core.Transaction {
	data, err := s.slot.Read(ctx)
	if errors.Is(err, storage.ErrSlotNotFound) {
		s.logger.DebugContext(ctx, "No persisted ledger, starting empty")
		return nil
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read persisted ledger, starting empty",
			applog.NewFields().WithOperation(applog.OpLoad).WithError(err).ToSlice()...)
		return nil
	}

	txs, skipped, err := Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Persisted ledger is malformed, starting empty",
			applog.NewFields().WithOperation(applog.OpLoad).WithError(err).ToSlice()...)
		return nil
	}
	for _, e := range skipped {
		s.logger.WarnContext(ctx, "Skipping unusable ledger entry",
			applog.NewFields().WithOperation(applog.OpLoad).WithError(e).ToSlice()...)
	}

	s.logger.DebugContext(ctx, "Ledger loaded", applog.FieldCount, len(txs))
	return txs
}

// Add records a new transaction at the front of the ledger. Invalid input is
// rejected with core.ErrEmptyDescription, core.ErrInvalidAmount or
// core.ErrInvalidKind and leaves the ledger untouched. The description is
// stored trimmed.
func (s *Store) Add(ctx context.Context, description string, amount decimal.Decimal, kind core.Kind) (core.Transaction, error) {
	t := core.Transaction{
		Description: description,
		Amount:      amount,
		Kind:        kind,
	}
	if err := t.Validate(); err != nil {
		s.logger.DebugContext(ctx, "Transaction rejected",
			applog.NewFields().
				WithOperation(applog.OpValidate).
				WithTransaction(0, description, amount.String(), kind.String()).
				WithError(err).
				ToSlice()...)
		return core.Transaction{}, err
	}
	t.Description = strings.TrimSpace(description)

	s.mu.Lock()
	t.ID = s.ids.next()
	next := make([]core.Transaction, 0, len(s.items)+1)
	next = append(next, t)
	next = append(next, s.items...)

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.items = next
	subs := s.subscribers()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction added",
		applog.NewFields().
			WithOperation(applog.OpAdd).
			WithTransaction(t.ID, t.Description, t.Amount.String(), t.Kind.String()).
			ToSlice()...)

	notify(ctx, subs, Event{Op: OpAdded, Transaction: t})
	return t, nil
}

// Remove deletes the transaction with the given id. It reports whether an
// entry was removed; an unknown id is not an error and nothing is written.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	idx := -1
	for i, t := range s.items {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Remove of unknown transaction ignored", applog.FieldTransactionID, id)
		return false, nil
	}

	removed := s.items[idx]
	next := make([]core.Transaction, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.items = next
	subs := s.subscribers()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction removed",
		applog.NewFields().
			WithOperation(applog.OpRemove).
			WithTransaction(removed.ID, removed.Description, removed.Amount.String(), removed.Kind.String()).
			ToSlice()...)

	notify(ctx, subs, Event{Op: OpRemoved, Transaction: removed})
	return true, nil
}

// All returns a copy of the ledger, newest first.
func (s *Store) All() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTransactions(s.items)
}

// Len returns the number of transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Totals recomputes income, expense and balance from the current ledger.
func (s *Store) Totals() core.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeTotals(s.items)
}

// Subscribe registers fn for every future mutation. The returned function
// cancels the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn Handler) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context, txs []core.Transaction) error {
	data, err := Encode(txs)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.slot.Write(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger",
			applog.NewFields().WithOperation(applog.OpPersist).WithError(err).ToSlice()...)
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// subscribers must be called with mu held.
func (s *Store) subscribers() []Handler {
	out := make([]Handler, len(s.subs))
	for i, sub := range s.subs {
		out[i] = sub.fn
	}
	return out
}

func notify(ctx context.Context, handlers []Handler, ev Event) {
	for _, h := range handlers {
		h(ctx, ev)
	}
}

func cloneTransactions(in []core.Transaction) []core.Transaction {
	return append([]core.Transaction{}, in...)
}
