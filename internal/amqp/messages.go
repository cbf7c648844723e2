package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionPayload mirrors the persisted ledger record.
type TransactionPayload struct {
	ID          int64       `json:"id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Kind        string      `json:"kind"`
}

// LedgerEventMessage announces a single ledger mutation.
type LedgerEventMessage struct {
	MessageID   string             `json:"message_id"`
	Event       string             `json:"event"`
	Transaction TransactionPayload `json:"transaction"`
	Timestamp   time.Time          `json:"timestamp"`
}

// NewLedgerEventMessage stamps a new message with a random id and the current time.
func NewLedgerEventMessage(event string, tx TransactionPayload) *LedgerEventMessage {
	return &LedgerEventMessage{
		MessageID:   uuid.NewString(),
		Event:       event,
		Transaction: tx,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
