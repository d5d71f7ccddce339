package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/category"
	"fintrack/internal/core"
	"fintrack/internal/metrics"
	"fintrack/internal/session"
)

// emergencyFundCategory marks the goal whose current amount feeds the
// emergency-fund health sub-score.
const emergencyFundCategory = "emergency-fund"

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	txs, err := s.loadTransactions(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions for summary", "error", err)
		internalError(w, "failed to compute summary")
		return
	}
	settings, err := s.store.GetSettings(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load settings for summary", "error", err)
		internalError(w, "failed to compute summary")
		return
	}

	summary := metrics.MonthlySummary(txs, time.Now())
	code := settings.CurrencyCode

	newResponse().body(struct {
		metrics.Summary
		Formatted map[string]string `json:"formatted"`
	}{
		Summary: summary,
		Formatted: map[string]string{
			"monthlyIncome":    metrics.FormatCurrency(summary.MonthlyIncome, code),
			"monthlyExpenses":  metrics.FormatCurrency(summary.MonthlyExpenses, code),
			"netSavings":       metrics.FormatCurrency(summary.NetSavings, code),
			"totalInvestments": metrics.FormatCurrency(summary.TotalInvestments, code),
		},
	}).write(w)
}

// breakdownEntry decorates a metrics breakdown row with registry metadata.
type breakdownEntry struct {
	metrics.CategoryBreakdown
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func decorateBreakdown(rows []metrics.CategoryBreakdown) []breakdownEntry {
	out := make([]breakdownEntry, 0, len(rows))
	for _, row := range rows {
		meta := category.Lookup(row.Category)
		out = append(out, breakdownEntry{
			CategoryBreakdown: row,
			Label:             meta.Label,
			Icon:              meta.Icon,
			Color:             meta.Color,
		})
	}
	return out
}

// transactionTypeParam reads ?type=, defaulting to expense.
func transactionTypeParam(r *http.Request) (core.TransactionType, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("type"))
	if v == "" {
		return core.Expense, true
	}
	typ := core.TransactionType(v)
	return typ, typ.Valid()
}

func (s *Server) handleDashboardBreakdown(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}
	typ, ok := transactionTypeParam(r)
	if !ok {
		badRequest(w, "type must be one of income, expense, investment")
		return
	}

	txs, err := s.loadTransactions(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions for breakdown", "error", err)
		internalError(w, "failed to compute breakdown")
		return
	}
	newResponse().body(decorateBreakdown(metrics.BreakdownByCategory(txs, typ))).write(w)
}

func (s *Server) handleDashboardTrend(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}
	typ, ok := transactionTypeParam(r)
	if !ok {
		badRequest(w, "type must be one of income, expense, investment")
		return
	}

	txs, err := s.loadTransactions(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions for trend", "error", err)
		internalError(w, "failed to compute trend")
		return
	}
	newResponse().body(metrics.MonthlyTrend(txs, typ, time.Now())).write(w)
}

func (s *Server) handleDashboardTopCategories(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}
	typ, ok := transactionTypeParam(r)
	if !ok {
		badRequest(w, "type must be one of income, expense, investment")
		return
	}

	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}

	txs, err := s.loadTransactions(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions for top categories", "error", err)
		internalError(w, "failed to compute top categories")
		return
	}
	newResponse().body(decorateBreakdown(metrics.TopCategories(txs, typ, limit))).write(w)
}

// handleDashboardHealth blends the scored indicators: savings rate from the
// month summary, emergency-fund months from the matching goal's current
// amount over monthly expenses, investment ratio from monthly investments
// over monthly income.
func (s *Server) handleDashboardHealth(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	txs, err := s.loadTransactions(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions for health score", "error", err)
		internalError(w, "failed to compute health score")
		return
	}
	goals, err := s.store.ListGoals(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load goals for health score", "error", err)
		internalError(w, "failed to compute health score")
		return
	}

	summary := metrics.MonthlySummary(txs, time.Now())

	var emergencyFund float64
	for _, g := range goals {
		if g.Category == emergencyFundCategory {
			emergencyFund += g.CurrentAmount.Rupees()
		}
	}
	var emergencyMonths float64
	if summary.MonthlyExpenses > 0 {
		emergencyMonths = emergencyFund / summary.MonthlyExpenses
	}
	var investmentRatio float64
	if summary.MonthlyIncome > 0 {
		investmentRatio = summary.MonthlyInvestments / summary.MonthlyIncome
	}

	newResponse().body(struct {
		HealthScore     int           `json:"healthScore"`
		SavingsRate     metrics.Score `json:"savingsRate"`
		EmergencyFund   metrics.Score `json:"emergencyFund"`
		EmergencyMonths float64       `json:"emergencyFundMonths"`
		InvestmentRatio float64       `json:"investmentRatio"`
	}{
		HealthScore:     metrics.HealthScore(summary.SavingsRate, emergencyMonths, investmentRatio),
		SavingsRate:     metrics.SavingsRateScore(summary.SavingsRate),
		EmergencyFund:   metrics.EmergencyFundScore(emergencyFund, summary.MonthlyExpenses),
		EmergencyMonths: emergencyMonths,
		InvestmentRatio: investmentRatio,
	}).write(w)
}
