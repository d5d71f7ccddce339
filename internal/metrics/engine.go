// Package metrics derives financial indicators from transaction snapshots.
//
// Every function here is pure: no I/O, no retained state, inputs are never
// mutated. Callers pass the reference time explicitly so calendar-window
// computations stay deterministic under test. All functions are total over
// well-formed input, including empty lists and zero denominators; negative
// amounts flow through the arithmetic unchanged.
package metrics

import (
	"math"
	"sort"
	"time"

	"fintrack/internal/core"
)

// Summary aggregates the current calendar month plus all-time investments.
type Summary struct {
	MonthlyIncome      float64 `json:"monthlyIncome"`
	MonthlyExpenses    float64 `json:"monthlyExpenses"`
	MonthlyInvestments float64 `json:"monthlyInvestments"`
	NetSavings         float64 `json:"netSavings"`
	SavingsRate        float64 `json:"savingsRate"`
	TotalInvestments   float64 `json:"totalInvestments"`
}

// CategoryBreakdown is the per-category share of one transaction type.
type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// TrendPoint is one month of a trend series, labeled "Jan 2006".
type TrendPoint struct {
	Label  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// Score is a tiered rating of a single indicator.
type Score struct {
	Score    int    `json:"score"`
	Category string `json:"category"`
	Color    string `json:"color"`
}

// DefaultTopLimit bounds TopCategories when no limit is given.
const DefaultTopLimit = 5

// MonthlySummary sums income, expenses and investments for transactions
// dated on or after the first day of now's month. TotalInvestments covers
// the entire input regardless of date. SavingsRate is zero when there is no
// income. An empty input yields the zero Summary.
func MonthlySummary(txs []core.Transaction, now time.Time) Summary {
	var s Summary
	monthStart := core.MonthStart(now)

	for _, t := range txs {
		amt := t.Amount.Rupees()
		if t.Type == core.Investment {
			s.TotalInvestments += amt
		}
		if t.Date.Before(monthStart) {
			continue
		}
		switch t.Type {
		case core.Income:
			s.MonthlyIncome += amt
		case core.Expense:
			s.MonthlyExpenses += amt
		case core.Investment:
			s.MonthlyInvestments += amt
		}
	}

	s.NetSavings = s.MonthlyIncome - s.MonthlyExpenses
	if s.MonthlyIncome > 0 {
		s.SavingsRate = s.NetSavings / s.MonthlyIncome * 100
	}
	return s
}

// BreakdownByCategory groups transactions of the given type by exact
// category string and returns per-category totals sorted descending by
// amount. Percentages are shares of the type total, zero when the total is
// zero. The sort is stable, so equal amounts keep first-appearance order.
func BreakdownByCategory(txs []core.Transaction, typ core.TransactionType) []CategoryBreakdown {
	totals := map[string]*CategoryBreakdown{}
	order := make([]string, 0)
	var total float64

	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		amt := t.Amount.Rupees()
		entry, ok := totals[t.Category]
		if !ok {
			entry = &CategoryBreakdown{Category: t.Category}
			totals[t.Category] = entry
			order = append(order, t.Category)
		}
		entry.Amount += amt
		entry.Count++
		total += amt
	}

	out := make([]CategoryBreakdown, 0, len(order))
	for _, cat := range order {
		entry := *totals[cat]
		if total > 0 {
			entry.Percentage = entry.Amount / total * 100
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	return out
}

// MonthlyTrend returns exactly six points, one per calendar month from five
// months ago through now's month, in ascending chronological order. Months
// with no matching transactions report a zero amount. Transactions dated
// outside the window, including future-dated ones, are ignored.
func MonthlyTrend(txs []core.Transaction, typ core.TransactionType, now time.Time) []TrendPoint {
	const months = 6

	// bounds[i]..bounds[i+1] delimits bucket i, so the current month has an
	// upper bound like every other bucket.
	bounds := make([]time.Time, months+1)
	for i := range bounds {
		bounds[i] = core.MonthStart(now).AddDate(0, i-(months-1), 0)
	}
	out := make([]TrendPoint, months)
	for i := range out {
		out[i] = TrendPoint{Label: bounds[i].Format("Jan 2006")}
	}

	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		for i := months - 1; i >= 0; i-- {
			if !t.Date.Before(bounds[i]) {
				if t.Date.Before(bounds[i+1]) {
					out[i].Amount += t.Amount.Rupees()
				}
				break
			}
		}
	}
	return out
}

// TopCategories truncates the breakdown to the first limit entries after
// sorting. A non-positive limit falls back to DefaultTopLimit.
func TopCategories(txs []core.Transaction, typ core.TransactionType, limit int) []CategoryBreakdown {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	breakdown := BreakdownByCategory(txs, typ)
	if len(breakdown) > limit {
		breakdown = breakdown[:limit]
	}
	return breakdown
}

// SavingsRateScore maps a savings rate (percent) onto a tiered score.
func SavingsRateScore(rate float64) Score {
	switch {
	case rate >= 30:
		return Score{Score: 95, Category: "excellent", Color: colorExcellent}
	case rate >= 20:
		return Score{Score: 80, Category: "good", Color: colorGood}
	case rate >= 10:
		return Score{Score: 60, Category: "fair", Color: colorFair}
	default:
		return Score{Score: 30, Category: "poor", Color: colorPoor}
	}
}

// EmergencyFundScore rates how many months of expenses the fund covers.
// A non-positive monthly expense figure counts as zero months.
func EmergencyFundScore(currentAmount, monthlyExpenses float64) Score {
	var months float64
	if monthlyExpenses > 0 {
		months = currentAmount / monthlyExpenses
	}
	switch {
	case months >= 6:
		return Score{Score: 95, Category: "excellent", Color: colorExcellent}
	case months >= 3:
		return Score{Score: 75, Category: "good", Color: colorGood}
	case months >= 1:
		return Score{Score: 50, Category: "fair", Color: colorFair}
	default:
		return Score{Score: 20, Category: "poor", Color: colorPoor}
	}
}

// HealthScore blends the three sub-scores into a 0..100 composite:
// savings 40%, emergency fund 30%, investment ratio 30%. The emergency
// sub-score is derived by feeding the month ratio through the emergency
// scorer against a fixed baseline, which reduces to tiering on the ratio
// itself; investmentRatio is capped at 1.0 worth of score.
func HealthScore(savingsRate, emergencyFundMonths, investmentRatio float64) int {
	savingsScore := float64(SavingsRateScore(savingsRate).Score)
	emergencyScore := float64(EmergencyFundScore(emergencyFundMonths*1000, 1000).Score)
	investmentScore := math.Min(investmentRatio*100, 100)

	score := int(math.Round(savingsScore*0.4 + emergencyScore*0.3 + investmentScore*0.3))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

const (
	colorExcellent = "#16a34a"
	colorGood      = "#65a30d"
	colorFair      = "#ca8a04"
	colorPoor      = "#dc2626"
)
