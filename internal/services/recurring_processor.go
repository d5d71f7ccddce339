package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// RecurringStore is the slice of storage the recurring processor needs.
type RecurringStore interface {
	ListRecurringTemplates(ctx context.Context) ([]storage.RecurringTemplate, error)
	CreateTransaction(ctx context.Context, t core.Transaction) error
	UpdateLastMaterialized(ctx context.Context, id string, when time.Time) error
}

// RecurringProcessor materializes due recurring templates into concrete
// transactions.
type RecurringProcessor struct {
	store     RecurringStore
	publisher ExportPublisher
}

func NewRecurringProcessor(store RecurringStore, publisher ExportPublisher) *RecurringProcessor {
	return &RecurringProcessor{store: store, publisher: publisher}
}

// ProcessDue materializes every due template once and returns how many
// transactions were created. Templates that have never materialized use
// their own date as the baseline.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	templates, err := p.store.ListRecurringTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	created := 0
	for _, tpl := range templates {
		checker := CheckerFor(tpl.Transaction.RecurrenceFrequency)
		if checker == nil {
			slog.WarnContext(ctx, "Recurring template with invalid frequency, skipping",
				"transaction_id", tpl.Transaction.ID,
				"frequency", tpl.Transaction.RecurrenceFrequency)
			continue
		}

		last := tpl.LastMaterialized
		if last.IsZero() {
			last = tpl.Transaction.Date
		}
		if !checker.IsDue(last, now) {
			continue
		}

		next := checker.NextDate(last)
		if err := p.materialize(ctx, tpl.Transaction, next); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring transaction",
				"transaction_id", tpl.Transaction.ID,
				"error", err)
			continue
		}
		if err := p.store.UpdateLastMaterialized(ctx, tpl.Transaction.ID, next); err != nil {
			slog.ErrorContext(ctx, "Failed to update materialization bookmark",
				"transaction_id", tpl.Transaction.ID,
				"error", err)
			continue
		}
		created++
	}

	if created > 0 {
		slog.InfoContext(ctx, "Materialized recurring transactions", "count", created)
	}
	return created, nil
}

// materialize copies the template into a fresh, non-recurring transaction
// dated at the due instant.
func (p *RecurringProcessor) materialize(ctx context.Context, tpl core.Transaction, date time.Time) error {
	t := core.NewTransaction(tpl.UserID, tpl.Type, tpl.Amount, tpl.Title, tpl.Category, date)
	t.Notes = tpl.Notes
	t.IsSplit = tpl.IsSplit
	t.SplitWith = tpl.SplitWith

	if err := p.store.CreateTransaction(ctx, t); err != nil {
		return err
	}

	if p.publisher != nil {
		if err := p.publisher.PublishTransactionSync(ctx, t.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to queue materialized transaction for export",
				"transaction_id", t.ID,
				"error", err)
		}
	}
	return nil
}

// RunLoop processes due templates on a fixed interval until the context ends.
func (p *RecurringProcessor) RunLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once immediately so restarts don't wait a full interval.
	if _, err := p.ProcessDue(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if _, err := p.ProcessDue(ctx, now); err != nil {
				slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
			}
		}
	}
}
