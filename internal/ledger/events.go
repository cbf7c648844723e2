package ledger

import (
	"context"

	"spendwise/internal/core"
)

// Op names a ledger mutation.
type Op string

const (
	OpAdded   Op = "added"
	OpRemoved Op = "removed"
)

// Event is delivered to subscribers after a mutation has been persisted.
type Event struct {
	Op          Op
	Transaction core.Transaction
}

// Handler receives ledger events. It runs synchronously on the goroutine
// that performed the mutation and may read the store.
type Handler func(ctx context.Context, ev Event)

type subscription struct {
	id int
	fn Handler
}
