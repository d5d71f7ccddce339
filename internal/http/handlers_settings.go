package http

import (
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/metrics"
	"fintrack/internal/session"
)

type settingsResponse struct {
	CurrencyCode   string `json:"currencyCode"`
	CurrencySymbol string `json:"currencySymbol"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	settings, err := s.store.GetSettings(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load settings", "error", err)
		internalError(w, "failed to load settings")
		return
	}
	newResponse().body(settingsResponse{
		CurrencyCode:   settings.CurrencyCode,
		CurrencySymbol: metrics.CurrencySymbol(settings.CurrencyCode),
	}).write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		unprocessable(w, "currency code must be a 3-letter ISO code")
		return
	}

	settings := core.Settings{
		UserID:       sess.UserID,
		CurrencyCode: strings.ToUpper(req.CurrencyCode),
	}
	if err := s.store.UpdateSettings(r.Context(), settings); err != nil {
		slog.ErrorContext(r.Context(), "Failed to update settings", "error", err)
		internalError(w, "failed to update settings")
		return
	}
	newResponse().body(settingsResponse{
		CurrencyCode:   settings.CurrencyCode,
		CurrencySymbol: metrics.CurrencySymbol(settings.CurrencyCode),
	}).write(w)
}
