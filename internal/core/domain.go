package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income     TransactionType = "income"
	Expense    TransactionType = "expense"
	Investment TransactionType = "investment"
)

const (
	Daily   RecurrenceFrequency = "daily"
	Weekly  RecurrenceFrequency = "weekly"
	Monthly RecurrenceFrequency = "monthly"
	Yearly  RecurrenceFrequency = "yearly"
)

type (
	TransactionType     string
	RecurrenceFrequency string

	// Transaction is a single money movement owned by a user. Recurring
	// transactions act as templates that the recurring worker materializes.
	Transaction struct {
		ID                  string
		UserID              string
		Type                TransactionType
		Amount              Money
		Title               string
		Category            string
		Date                time.Time
		Notes               string
		IsRecurring         bool
		RecurrenceFrequency RecurrenceFrequency
		IsSplit             bool
		SplitWith           []string
		CreatedAt           time.Time
	}

	// Goal is a savings target tracked against its current amount.
	Goal struct {
		ID            string
		UserID        string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    time.Time
		Category      string
	}

	// Settings holds per-user display preferences.
	Settings struct {
		UserID       string
		CurrencyCode string
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid recurrence frequency")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
)

// NewTransaction mints a transaction with a fresh ID and creation timestamp.
func NewTransaction(userID string, typ TransactionType, amount Money, title, category string, date time.Time) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Amount:    amount,
		Title:     title,
		Category:  category,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
}

// NewGoal mints a goal with a fresh ID.
func NewGoal(userID, name string, target Money, category string) Goal {
	return Goal{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		TargetAmount: target,
		Category:     category,
	}
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Investment:
		return true
	}
	return false
}

func (f RecurrenceFrequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.IsRecurring && !t.RecurrenceFrequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if len(g.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Paise < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(g.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Progress returns completion as a percentage clamped to [0, 100].
func (g Goal) Progress() float64 {
	if g.TargetAmount.Paise <= 0 {
		return 0
	}
	p := float64(g.CurrentAmount.Paise) / float64(g.TargetAmount.Paise) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// MonthStart returns midnight local time on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
