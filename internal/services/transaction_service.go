// Package services holds the orchestration between storage, the category
// registry, and the export queue.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/category"
	"fintrack/internal/core"
)

// TransactionStore is the slice of storage the transaction service needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID string) error
}

// ExportPublisher queues export work. The AMQP client implements it; a nil
// publisher disables queuing without disabling the API.
type ExportPublisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
	PublishTransactionDelete(ctx context.Context, id string) error
}

type TransactionService struct {
	store     TransactionStore
	publisher ExportPublisher
}

func NewTransactionService(store TransactionStore, publisher ExportPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// CreateInput carries the validated request fields for a new transaction.
type CreateInput struct {
	UserID              string
	Type                core.TransactionType
	Amount              core.Money
	Title               string
	Category            string
	Date                time.Time
	Notes               string
	IsRecurring         bool
	RecurrenceFrequency core.RecurrenceFrequency
	IsSplit             bool
	SplitWith           []string
}

// Create validates, stores, and queues the transaction for export. A failed
// publish does not fail the create; the row stays pending and the worker's
// catch-up pass picks it up.
func (s *TransactionService) Create(ctx context.Context, in CreateInput) (core.Transaction, error) {
	t := core.NewTransaction(in.UserID, in.Type, in.Amount, in.Title, in.Category, in.Date)
	t.Notes = in.Notes
	t.IsRecurring = in.IsRecurring
	t.RecurrenceFrequency = in.RecurrenceFrequency
	t.IsSplit = in.IsSplit
	t.SplitWith = in.SplitWith

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !category.Known(t.Category) {
		slog.WarnContext(ctx, "Unknown category on transaction, keeping as-is",
			"transaction_id", t.ID,
			"category", t.Category)
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("store transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionSync(ctx, t.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to queue transaction for export",
				"transaction_id", t.ID,
				"error", err)
		}
	}

	return t, nil
}

// List returns the user's live transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// Delete soft deletes and notifies the export worker.
func (s *TransactionService) Delete(ctx context.Context, id, userID string) error {
	if err := s.store.DeleteTransaction(ctx, id, userID); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to queue transaction deletion",
				"transaction_id", id,
				"error", err)
		}
	}
	return nil
}
