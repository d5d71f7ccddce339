package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// response is a small fluent builder for JSON responses so every handler
// writes the same shape.
type response struct {
	statusCode int
	payload    any
	headers    map[string]string
}

func newResponse() *response {
	return &response{statusCode: http.StatusOK}
}

func (b *response) status(code int) *response {
	b.statusCode = code
	return b
}

func (b *response) header(name, value string) *response {
	if b.headers == nil {
		b.headers = make(map[string]string)
	}
	b.headers[name] = value
	return b
}

func (b *response) body(v any) *response {
	b.payload = v
	return b
}

// errorBody wraps a message in the standard error envelope.
func (b *response) errorBody(message string) *response {
	b.payload = map[string]string{"error": message}
	return b
}

func (b *response) write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.payload); err != nil {
		slog.Error("Failed to encode response body", "error", err)
	}
}

func badRequest(w http.ResponseWriter, message string) {
	newResponse().status(http.StatusBadRequest).errorBody(message).write(w)
}

func unprocessable(w http.ResponseWriter, message string) {
	newResponse().status(http.StatusUnprocessableEntity).errorBody(message).write(w)
}

func notFound(w http.ResponseWriter, message string) {
	newResponse().status(http.StatusNotFound).errorBody(message).write(w)
}

func internalError(w http.ResponseWriter, message string) {
	newResponse().status(http.StatusInternalServerError).errorBody(message).write(w)
}
