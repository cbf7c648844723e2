package storage

import (
	"context"
	"errors"
)

// ErrSlotNotFound is returned by Read when nothing was ever written to the slot.
var ErrSlotNotFound = errors.New("slot not found")

// Slot is a single named storage cell holding an opaque document. Writes
// replace the whole document atomically.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}
