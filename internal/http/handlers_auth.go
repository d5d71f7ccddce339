package http

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/storage"
)

// handleLogin checks demo credentials and mints a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		unprocessable(w, "username and password are required")
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), sanitizeInput(req.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			newResponse().status(http.StatusUnauthorized).
				errorBody("invalid credentials").write(w)
			return
		}
		slog.ErrorContext(r.Context(), "User lookup failed", "error", err)
		internalError(w, "login failed")
		return
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		newResponse().status(http.StatusUnauthorized).
			errorBody("invalid credentials").write(w)
		return
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to issue session token", "error", err)
		internalError(w, "login failed")
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	newResponse().body(map[string]string{
		"token":  token,
		"userId": user.ID,
	}).write(w)
}
