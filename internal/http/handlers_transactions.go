package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

type transactionResponse struct {
	ID                  string   `json:"id"`
	Type                string   `json:"type"`
	Amount              float64  `json:"amount"`
	Title               string   `json:"title"`
	Category            string   `json:"category"`
	Date                string   `json:"date"`
	Notes               string   `json:"notes,omitempty"`
	IsRecurring         bool     `json:"isRecurring"`
	RecurrenceFrequency string   `json:"recurrenceFrequency,omitempty"`
	IsSplit             bool     `json:"isSplit"`
	SplitWith           []string `json:"splitWith,omitempty"`
	CreatedAt           string   `json:"createdAt"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                  t.ID,
		Type:                string(t.Type),
		Amount:              t.Amount.Rupees(),
		Title:               t.Title,
		Category:            t.Category,
		Date:                t.Date.Format(time.RFC3339),
		Notes:               t.Notes,
		IsRecurring:         t.IsRecurring,
		RecurrenceFrequency: string(t.RecurrenceFrequency),
		IsSplit:             t.IsSplit,
		SplitWith:           t.SplitWith,
		CreatedAt:           t.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	txs, err := s.txs.List(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		internalError(w, "failed to list transactions")
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	newResponse().body(out).write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		unprocessable(w, "invalid transaction: "+err.Error())
		return
	}
	if req.IsRecurring && req.RecurrenceFrequency == "" {
		unprocessable(w, "recurring transactions need a recurrence frequency")
		return
	}

	paise, err := core.ParseDecimalToPaise(req.Amount)
	if err != nil {
		unprocessable(w, "invalid amount")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		unprocessable(w, err.Error())
		return
	}

	t, err := s.txs.Create(r.Context(), services.CreateInput{
		UserID:              sess.UserID,
		Type:                core.TransactionType(req.Type),
		Amount:              core.Money{Paise: paise},
		Title:               sanitizeInput(req.Title),
		Category:            sanitizeInput(req.Category),
		Date:                date,
		Notes:               sanitizeInput(req.Notes),
		IsRecurring:         req.IsRecurring,
		RecurrenceFrequency: core.RecurrenceFrequency(req.RecurrenceFrequency),
		IsSplit:             req.IsSplit,
		SplitWith:           req.SplitWith,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		unprocessable(w, err.Error())
		return
	}

	s.invalidateUser(sess.UserID)
	newResponse().status(http.StatusCreated).body(toTransactionResponse(t)).write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	t, err := s.store.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil || t.UserID != sess.UserID {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.ErrorContext(r.Context(), "Failed to load transaction", "error", err)
			internalError(w, "failed to load transaction")
			return
		}
		notFound(w, "transaction not found")
		return
	}
	newResponse().body(toTransactionResponse(t)).write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	if err := s.txs.Delete(r.Context(), r.PathValue("id"), sess.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(w, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "error", err)
		internalError(w, "failed to delete transaction")
		return
	}

	s.invalidateUser(sess.UserID)
	newResponse().status(http.StatusNoContent).write(w)
}
