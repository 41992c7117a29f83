package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Selvaganesh007/expense-tracker/internal/amqp"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

// Worker drains transaction events from the queue and mirrors each change
// into the export target. Events carry only identifiers; the worker reads
// the current row from the store, so older events that arrive late still
// write the latest state.
type Worker struct {
	store  store.TransactionReader
	target *SheetsExporter
}

func NewWorker(store store.TransactionReader, target *SheetsExporter) *Worker {
	return &Worker{store: store, target: target}
}

// HandleEvent processes one queued transaction event.
func (w *Worker) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing export event",
		"transaction_id", msg.TransactionID,
		"action", msg.Action)

	if msg.Action == amqp.ActionDeleted {
		if err := w.target.RemoveTransaction(ctx, msg.TransactionID); err != nil {
			return fmt.Errorf("remove exported transaction: %w", err)
		}
		return nil
	}

	t, err := w.store.GetTransaction(ctx, msg.UserID, msg.TransactionID)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted between event and processing; drop the stale row instead.
		slog.WarnContext(ctx, "Transaction gone before export, removing row",
			"transaction_id", msg.TransactionID)
		return w.target.RemoveTransaction(ctx, msg.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("get transaction for export: %w", err)
	}

	if err := w.target.SyncTransaction(ctx, t); err != nil {
		return fmt.Errorf("sync transaction to export target: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"transaction_id", msg.TransactionID,
		"action", msg.Action)
	return nil
}

// Run consumes events until the context is cancelled.
func (w *Worker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeTransactionEvents(ctx, func(msg *amqp.TransactionEventMessage) error {
		return w.HandleEvent(ctx, msg)
	})
}
