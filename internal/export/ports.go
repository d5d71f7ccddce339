// Package export defines the destinations transactions can be copied to.
package export

import (
	"context"

	"fintrack/internal/core"
)

// TransactionWriter appends transactions to an external destination.
type TransactionWriter interface {
	Append(ctx context.Context, t core.Transaction) error
}
