package http

import (
	"net/http"

	"fintrack/internal/category"
	"fintrack/internal/core"
)

// handleListCategories returns the static registry, optionally filtered by
// ?type=income|expense|investment.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ := core.TransactionType(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		badRequest(w, "type must be one of income, expense, investment")
		return
	}
	newResponse().body(category.All(typ)).write(w)
}
