package services

import (
	"context"
	"encoding/json"
	"fmt"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
)

// EventPublisher is the outbound side of the change feed. *amqp.Client
// satisfies it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// ChangePublisher forwards ledger events to the change feed. The ledger is
// already persisted when an event arrives, so publish failures are logged
// and swallowed.
type ChangePublisher struct {
	publisher EventPublisher
	logger    *applog.Logger
}

func NewChangePublisher(publisher EventPublisher, logger *applog.Logger) *ChangePublisher {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ChangePublisher{
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentAMQP),
	}
}

// Attach subscribes to store and returns the cancel function.
func (p *ChangePublisher) Attach(store *ledger.Store) func() {
	return store.Subscribe(p.Handle)
}

// Handle implements ledger.Handler.
func (p *ChangePublisher) Handle(ctx context.Context, ev ledger.Event) {
	if p.publisher == nil {
		p.logger.WarnContext(ctx, "AMQP client not available, skipping ledger event",
			applog.FieldEvent, string(ev.Op))
		return
	}

	msg := amqp.NewLedgerEventMessage(string(ev.Op), payloadFrom(ev.Transaction))
	if err := p.publisher.PublishLedgerEvent(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish ledger event",
			applog.NewFields().
				WithOperation(applog.OpPublish).
				With(applog.FieldEvent, msg.Event).
				With(applog.FieldMessageID, msg.MessageID).
				With(applog.FieldTransactionID, ev.Transaction.ID).
				WithError(err).
				ToSlice()...)
		return
	}

	p.logger.DebugContext(ctx, "Ledger event published",
		applog.FieldEvent, msg.Event,
		applog.FieldMessageID, msg.MessageID)
}

func payloadFrom(t core.Transaction) amqp.TransactionPayload {
	return amqp.TransactionPayload{
		ID:          t.ID,
		Description: t.Description,
		Amount:      json.Number(t.Amount.String()),
		Kind:        t.Kind.String(),
	}
}

// Closer is implemented by publishers holding a connection.
type Closer interface {
	Close() error
}

// Close closes the underlying publisher when it holds resources.
func (p *ChangePublisher) Close() error {
	if c, ok := p.publisher.(Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close change publisher: %w", err)
		}
	}
	return nil
}
