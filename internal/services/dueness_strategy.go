package services

import (
	"time"

	"fintrack/internal/core"
)

// DuenessChecker decides whether a recurring template is due for another
// materialization at the given instant.
type DuenessChecker interface {
	IsDue(lastMaterialized, now time.Time) bool
	NextDate(last time.Time) time.Time
}

// duenessCheckers maps each frequency to its strategy.
var duenessCheckers = map[core.RecurrenceFrequency]DuenessChecker{
	core.Daily:   dailyChecker{},
	core.Weekly:  weeklyChecker{},
	core.Monthly: monthlyChecker{},
	core.Yearly:  yearlyChecker{},
}

// CheckerFor returns the strategy for a frequency, or nil for invalid ones.
func CheckerFor(freq core.RecurrenceFrequency) DuenessChecker {
	return duenessCheckers[freq]
}

type dailyChecker struct{}

func (dailyChecker) IsDue(last, now time.Time) bool {
	return !last.AddDate(0, 0, 1).After(now)
}

func (dailyChecker) NextDate(last time.Time) time.Time {
	return last.AddDate(0, 0, 1)
}

type weeklyChecker struct{}

func (weeklyChecker) IsDue(last, now time.Time) bool {
	return !last.AddDate(0, 0, 7).After(now)
}

func (weeklyChecker) NextDate(last time.Time) time.Time {
	return last.AddDate(0, 0, 7)
}

type monthlyChecker struct{}

func (monthlyChecker) IsDue(last, now time.Time) bool {
	return !monthlyChecker{}.NextDate(last).After(now)
}

// NextDate advances one month, clamping to the last day when the target
// month is shorter (Jan 31 -> Feb 28).
func (monthlyChecker) NextDate(last time.Time) time.Time {
	return addMonthsClamped(last, 1)
}

type yearlyChecker struct{}

func (yearlyChecker) IsDue(last, now time.Time) bool {
	return !yearlyChecker{}.NextDate(last).After(now)
}

func (yearlyChecker) NextDate(last time.Time) time.Time {
	return addMonthsClamped(last, 12)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(target.Year(), target.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
