package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// ExportStatus values tracked on transactions for the sheets pipeline.
const (
	ExportPending = "pending"
	ExportDone    = "synced"
	ExportError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB

	// Currency returned for users without a settings row.
	defaultCurrency string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, defaultCurrency: "INR"}, nil
}

// SetDefaultCurrency overrides the currency reported for users who have not
// saved settings yet.
func (r *SQLiteRepository) SetDefaultCurrency(code string) {
	if code != "" {
		r.defaultCurrency = code
	}
}

// Ping reports whether the database answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const txColumns = `id, user_id, type, amount_paise, title, category, date, notes,
	is_recurring, recurrence_frequency, is_split, split_with, created_at`

// CreateTransaction inserts a transaction with export status pending.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+txColumns+`, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Amount.Paise, t.Title, t.Category,
		t.Date.Format(time.RFC3339), t.Notes,
		boolToInt(t.IsRecurring), string(t.RecurrenceFrequency),
		boolToInt(t.IsSplit), strings.Join(t.SplitWith, ","),
		t.CreatedAt.Format(time.RFC3339), ExportPending)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"transaction_type", t.Type,
		"amount_paise", t.Amount.Paise,
		"category", t.Category)
	return nil
}

// GetTransaction loads one transaction by ID, ignoring soft-deleted rows.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+txColumns+` FROM transactions
		WHERE id = ? AND deleted_at IS NULL`, id)
	return scanTransaction(row)
}

// ListTransactions returns all live transactions for a user, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+txColumns+` FROM transactions
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// DeleteTransaction soft deletes, scoped to the owning user.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecurringTemplates returns live recurring transactions with their last
// materialization time (zero when never materialized).
func (r *SQLiteRepository) ListRecurringTemplates(ctx context.Context) ([]RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+txColumns+`, COALESCE(last_materialized, '') FROM transactions
		WHERE is_recurring = 1 AND deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	defer rows.Close()

	var out []RecurringTemplate
	for rows.Next() {
		var (
			t        core.Transaction
			typ      string
			freq     string
			dateStr  string
			created  string
			split    string
			isRec    int
			isSplit  int
			lastsStr string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &typ, &t.Amount.Paise, &t.Title,
			&t.Category, &dateStr, &t.Notes, &isRec, &freq, &isSplit, &split,
			&created, &lastsStr); err != nil {
			return nil, fmt.Errorf("scan recurring template: %w", err)
		}
		fillTransaction(&t, typ, freq, dateStr, created, split, isRec, isSplit)
		tpl := RecurringTemplate{Transaction: t}
		if lastsStr != "" {
			if ts, err := time.Parse(time.RFC3339, lastsStr); err == nil {
				tpl.LastMaterialized = ts
			}
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

// UpdateLastMaterialized records when a recurring template last produced a
// concrete transaction.
func (r *SQLiteRepository) UpdateLastMaterialized(ctx context.Context, id string, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET last_materialized = ? WHERE id = ?`,
		when.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update last materialized: %w", err)
	}
	return nil
}

// PendingExport holds the minimum needed to drive an export catch-up pass.
type PendingExport struct {
	ID        string
	CreatedAt time.Time
}

// RecurringTemplate pairs a recurring transaction with its materialization
// bookkeeping.
type RecurringTemplate struct {
	Transaction      core.Transaction
	LastMaterialized time.Time
}

// GetPendingExports returns transactions not yet exported to the sheet.
func (r *SQLiteRepository) GetPendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at FROM transactions
		WHERE sync_status = ? AND deleted_at IS NULL
		ORDER BY created_at ASC LIMIT ?`, ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending exports: %w", err)
	}
	defer rows.Close()

	var out []PendingExport
	for rows.Next() {
		var p PendingExport
		var created string
		if err := rows.Scan(&p.ID, &created); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			p.CreatedAt = ts
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkExported flags a transaction as exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = ?, synced_at = ? WHERE id = ?`,
		ExportDone, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked exported", "transaction_id", id)
	return nil
}

// MarkExportError flags a transaction whose export failed.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = ? WHERE id = ?`, ExportError, id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with export error", "transaction_id", id)
	return nil
}

// CreateGoal inserts a goal.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	var target interface{}
	if !g.TargetDate.IsZero() {
		target = g.TargetDate.Format(time.RFC3339)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, name, target_amount_paise, current_amount_paise, target_date, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.Paise, g.CurrentAmount.Paise, target, g.Category)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal saved", "goal_id", g.ID, "category", g.Category)
	return nil
}

// GetGoal loads one goal scoped to its owner.
func (r *SQLiteRepository) GetGoal(ctx context.Context, id, userID string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, target_amount_paise, current_amount_paise, COALESCE(target_date, ''), category
		FROM goals WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID)
	return scanGoal(row)
}

// ListGoals returns all live goals for a user.
func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, target_amount_paise, current_amount_paise, COALESCE(target_date, ''), category
		FROM goals WHERE user_id = ? AND deleted_at IS NULL ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateGoal rewrites a goal's mutable fields.
func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	var target interface{}
	if !g.TargetDate.IsZero() {
		target = g.TargetDate.Format(time.RFC3339)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, target_amount_paise = ?, current_amount_paise = ?, target_date = ?, category = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		g.Name, g.TargetAmount.Paise, g.CurrentAmount.Paise, target, g.Category, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGoal soft deletes a goal scoped to its owner.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSettings returns a user's settings, falling back to the configured
// default currency when no row exists.
func (r *SQLiteRepository) GetSettings(ctx context.Context, userID string) (core.Settings, error) {
	s := core.Settings{UserID: userID, CurrencyCode: r.defaultCurrency}
	err := r.db.QueryRowContext(ctx, `
		SELECT currency_code FROM settings WHERE user_id = ?`, userID).Scan(&s.CurrencyCode)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return s, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// UpdateSettings upserts a user's settings row.
func (r *SQLiteRepository) UpdateSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, currency_code) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET currency_code = excluded.currency_code`,
		s.UserID, s.CurrencyCode)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// User is an account row used by the login handler.
type User struct {
	ID       string
	Username string
	Password string
}

// GetUserByUsername loads an account for credential checks.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		typ     string
		freq    string
		dateStr string
		created string
		split   string
		isRec   int
		isSplit int
	)
	err := row.Scan(&t.ID, &t.UserID, &typ, &t.Amount.Paise, &t.Title,
		&t.Category, &dateStr, &t.Notes, &isRec, &freq, &isSplit, &split, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	fillTransaction(&t, typ, freq, dateStr, created, split, isRec, isSplit)
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func fillTransaction(t *core.Transaction, typ, freq, dateStr, created, split string, isRec, isSplit int) {
	t.Type = core.TransactionType(typ)
	t.RecurrenceFrequency = core.RecurrenceFrequency(freq)
	t.IsRecurring = isRec != 0
	t.IsSplit = isSplit != 0
	if split != "" {
		t.SplitWith = strings.Split(split, ",")
	}
	if ts, err := time.Parse(time.RFC3339, dateStr); err == nil {
		t.Date = ts
	}
	if ts, err := time.Parse(time.RFC3339, created); err == nil {
		t.CreatedAt = ts
	}
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g      core.Goal
		target string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Paise,
		&g.CurrentAmount.Paise, &target, &g.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	if target != "" {
		if ts, err := time.Parse(time.RFC3339, target); err == nil {
			g.TargetDate = ts
		}
	}
	return g, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
