package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTransaction(userID string) core.Transaction {
	return core.NewTransaction(userID, core.Expense, core.Money{Paise: 45000},
		"Dinner", "food", time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC))
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := sampleTransaction("demo-user")
	tx.Notes = "team dinner"
	tx.IsSplit = true
	tx.SplitWith = []string{"asha", "ravi"}

	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	got, err := repo.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if got.Title != "Dinner" || got.Category != "food" || got.Amount.Paise != 45000 {
		t.Errorf("loaded transaction = %+v", got)
	}
	if got.Notes != "team dinner" {
		t.Errorf("Notes = %q", got.Notes)
	}
	if !got.IsSplit || len(got.SplitWith) != 2 || got.SplitWith[0] != "asha" {
		t.Errorf("split fields not preserved: %+v", got)
	}
	if !got.Date.Equal(tx.Date) {
		t.Errorf("Date = %v, want %v", got.Date, tx.Date)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := sampleTransaction("demo-user")
	older.Date = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := sampleTransaction("demo-user")
	newer.Date = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	other := sampleTransaction("someone-else")

	for _, tx := range []core.Transaction{older, newer, other} {
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	got, err := repo.ListTransactions(ctx, "demo-user")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d transactions, want 2", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Error("transactions not ordered newest first")
	}
}

func TestDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := sampleTransaction("demo-user")
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	if err := repo.DeleteTransaction(ctx, tx.ID, "demo-user"); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted transaction still loadable, err = %v", err)
	}

	// Deleting twice, or someone else's row, reports not found.
	if err := repo.DeleteTransaction(ctx, tx.ID, "demo-user"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, "no-such-id", "demo-user"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestExportPipeline(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleTransaction("demo-user")
	second := sampleTransaction("demo-user")
	for _, tx := range []core.Transaction{first, second} {
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	pending, err := repo.GetPendingExports(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingExports failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if err := repo.MarkExported(ctx, first.ID); err != nil {
		t.Fatalf("MarkExported failed: %v", err)
	}
	if err := repo.MarkExportError(ctx, second.ID); err != nil {
		t.Fatalf("MarkExportError failed: %v", err)
	}

	pending, err = repo.GetPendingExports(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingExports failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after marking = %d, want 0", len(pending))
	}
}

func TestRecurringTemplates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tpl := sampleTransaction("demo-user")
	tpl.IsRecurring = true
	tpl.RecurrenceFrequency = core.Monthly
	plain := sampleTransaction("demo-user")

	for _, tx := range []core.Transaction{tpl, plain} {
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	templates, err := repo.ListRecurringTemplates(ctx)
	if err != nil {
		t.Fatalf("ListRecurringTemplates failed: %v", err)
	}
	if len(templates) != 1 || templates[0].Transaction.ID != tpl.ID {
		t.Fatalf("templates = %+v, want just the recurring one", templates)
	}
	if !templates[0].LastMaterialized.IsZero() {
		t.Error("fresh template should have zero LastMaterialized")
	}

	when := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastMaterialized(ctx, tpl.ID, when); err != nil {
		t.Fatalf("UpdateLastMaterialized failed: %v", err)
	}
	templates, err = repo.ListRecurringTemplates(ctx)
	if err != nil {
		t.Fatalf("ListRecurringTemplates failed: %v", err)
	}
	if !templates[0].LastMaterialized.Equal(when) {
		t.Errorf("LastMaterialized = %v, want %v", templates[0].LastMaterialized, when)
	}
}

func TestGoalRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g := core.NewGoal("demo-user", "Emergency", core.Money{Paise: 60000000}, "emergency-fund")
	g.CurrentAmount = core.Money{Paise: 15000000}
	g.TargetDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := repo.CreateGoal(ctx, g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	got, err := repo.GetGoal(ctx, g.ID, "demo-user")
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if got.Name != "Emergency" || got.TargetAmount.Paise != 60000000 || got.CurrentAmount.Paise != 15000000 {
		t.Errorf("loaded goal = %+v", got)
	}
	if !got.TargetDate.Equal(g.TargetDate) {
		t.Errorf("TargetDate = %v, want %v", got.TargetDate, g.TargetDate)
	}

	// Owner scoping.
	if _, err := repo.GetGoal(ctx, g.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign goal err = %v, want ErrNotFound", err)
	}

	got.CurrentAmount = core.Money{Paise: 30000000}
	if err := repo.UpdateGoal(ctx, got); err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	updated, err := repo.GetGoal(ctx, g.ID, "demo-user")
	if err != nil {
		t.Fatalf("GetGoal after update failed: %v", err)
	}
	if updated.CurrentAmount.Paise != 30000000 {
		t.Errorf("CurrentAmount = %d, want 30000000", updated.CurrentAmount.Paise)
	}

	if err := repo.DeleteGoal(ctx, g.ID, "demo-user"); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	goals, err := repo.ListGoals(ctx, "demo-user")
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("goals after delete = %d, want 0", len(goals))
	}
}

func TestSettings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Unknown user defaults to INR.
	s, err := repo.GetSettings(ctx, "new-user")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if s.CurrencyCode != "INR" {
		t.Errorf("default currency = %q, want INR", s.CurrencyCode)
	}

	// The configured default flows through for users without a row.
	repo.SetDefaultCurrency("USD")
	s, err = repo.GetSettings(ctx, "new-user")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if s.CurrencyCode != "USD" {
		t.Errorf("configured default = %q, want USD", s.CurrencyCode)
	}
	repo.SetDefaultCurrency("INR")

	if err := repo.UpdateSettings(ctx, core.Settings{UserID: "demo-user", CurrencyCode: "USD"}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	s, err = repo.GetSettings(ctx, "demo-user")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if s.CurrencyCode != "USD" {
		t.Errorf("currency = %q, want USD", s.CurrencyCode)
	}

	// Upsert path.
	if err := repo.UpdateSettings(ctx, core.Settings{UserID: "demo-user", CurrencyCode: "EUR"}); err != nil {
		t.Fatalf("UpdateSettings upsert failed: %v", err)
	}
	s, _ = repo.GetSettings(ctx, "demo-user")
	if s.CurrencyCode != "EUR" {
		t.Errorf("currency after upsert = %q, want EUR", s.CurrencyCode)
	}
}

func TestPing(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.GetUserByUsername(ctx, "demo")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if u.ID != "demo-user" || u.Password == "" {
		t.Errorf("seeded demo user = %+v", u)
	}

	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}
