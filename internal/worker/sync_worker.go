// Package worker copies stored transactions into the configured export
// destination, driven by AMQP messages with a polling catch-up pass.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/storage"
)

// SyncWorker moves transactions from SQLite to the export destination.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    export.TransactionWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer export.TransactionWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{storage: storage, writer: writer, batchSize: batchSize}
}

// HandleSyncMessage exports one transaction named by an AMQP message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "transaction_id", msg.ID)

	t, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	return w.exportTransaction(ctx, t)
}

// HandleDeleteMessage acknowledges a deletion. Exported rows stay in the
// sheet as history; the message exists so the worker can log the event and
// future destinations can reconcile.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Transaction deleted upstream",
		"transaction_id", msg.ID,
		"deleted_at", msg.Timestamp)
	return nil
}

func (w *SyncWorker) exportTransaction(ctx context.Context, t core.Transaction) error {
	if err := w.writer.Append(ctx, t); err != nil {
		if markErr := w.storage.MarkExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"transaction_id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append transaction to export destination: %w", err)
	}

	if err := w.storage.MarkExported(ctx, t.ID); err != nil {
		return fmt.Errorf("mark transaction exported: %w", err)
	}
	return nil
}

// ProcessPendingExports exports transactions still marked pending. This is
// the backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingExports(ctx context.Context) error {
	pending, err := w.storage.GetPendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending transaction",
				"transaction_id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error",
					"transaction_id", p.ID, "error", err)
			}
			continue
		}
		if err := w.exportTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction",
				"transaction_id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains a larger pending backlog once at worker start to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingExports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending exports for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load transaction for startup export",
				"transaction_id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error",
					"transaction_id", p.ID, "error", err)
			}
			failed++
			continue
		}
		if err := w.exportTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"transaction_id", p.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

// RunCatchUpLoop runs the pending-export backup pass on a fixed interval
// until the context ends.
func (w *SyncWorker) RunCatchUpLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingExports(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export pass failed", "error", err)
			}
		}
	}
}
