// Package memory is an in-process transaction writer used in tests and
// when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/export"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var _ export.TransactionWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	return nil
}

// Items returns a copy of everything appended so far.
func (s *Store) Items() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}
