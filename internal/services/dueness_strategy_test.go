package services

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckerForUnknownFrequency(t *testing.T) {
	if CheckerFor("fortnightly") != nil {
		t.Error("unknown frequency should have no checker")
	}
	for _, f := range []core.RecurrenceFrequency{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if CheckerFor(f) == nil {
			t.Errorf("no checker for %q", f)
		}
	}
}

func TestDailyChecker(t *testing.T) {
	c := CheckerFor(core.Daily)
	last := date(2025, 3, 10)

	if c.IsDue(last, date(2025, 3, 10)) {
		t.Error("should not be due on the same day")
	}
	if !c.IsDue(last, date(2025, 3, 11)) {
		t.Error("should be due the next day")
	}
	if got := c.NextDate(last); !got.Equal(date(2025, 3, 11)) {
		t.Errorf("NextDate = %v, want 2025-03-11", got)
	}
}

func TestWeeklyChecker(t *testing.T) {
	c := CheckerFor(core.Weekly)
	last := date(2025, 3, 10)

	if c.IsDue(last, date(2025, 3, 16)) {
		t.Error("should not be due after six days")
	}
	if !c.IsDue(last, date(2025, 3, 17)) {
		t.Error("should be due after seven days")
	}
}

func TestMonthlyChecker(t *testing.T) {
	c := CheckerFor(core.Monthly)

	tests := []struct {
		name string
		last time.Time
		want time.Time
	}{
		{"plain month", date(2025, 3, 10), date(2025, 4, 10)},
		{"jan 31 clamps to feb 28", date(2025, 1, 31), date(2025, 2, 28)},
		{"jan 31 leap year clamps to feb 29", date(2024, 1, 31), date(2024, 2, 29)},
		{"may 31 clamps to jun 30", date(2025, 5, 31), date(2025, 6, 30)},
		{"dec rolls into next year", date(2025, 12, 15), date(2026, 1, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.NextDate(tt.last); !got.Equal(tt.want) {
				t.Errorf("NextDate(%v) = %v, want %v", tt.last, got, tt.want)
			}
		})
	}

	if c.IsDue(date(2025, 1, 31), date(2025, 2, 27)) {
		t.Error("should not be due before the clamped date")
	}
	if !c.IsDue(date(2025, 1, 31), date(2025, 2, 28)) {
		t.Error("should be due on the clamped date")
	}
}

func TestYearlyChecker(t *testing.T) {
	c := CheckerFor(core.Yearly)

	if got := c.NextDate(date(2025, 6, 15)); !got.Equal(date(2026, 6, 15)) {
		t.Errorf("NextDate = %v, want 2026-06-15", got)
	}
	// Feb 29 on a non-leap target year clamps to Feb 28.
	if got := c.NextDate(date(2024, 2, 29)); !got.Equal(date(2025, 2, 28)) {
		t.Errorf("NextDate(leap day) = %v, want 2025-02-28", got)
	}
	if c.IsDue(date(2025, 6, 15), date(2026, 6, 14)) {
		t.Error("should not be due a day early")
	}
	if !c.IsDue(date(2025, 6, 15), date(2026, 6, 15)) {
		t.Error("should be due exactly a year later")
	}
}
