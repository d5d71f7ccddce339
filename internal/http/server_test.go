package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	sessions := session.NewManager("test-secret", time.Hour)
	txs := services.NewTransactionService(repo, nil)
	srv := NewServer(":0", repo, txs, sessions)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, sessions
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/login", "",
		map[string]string{"username": "demo", "password": "demo1234"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out["token"] == "" {
		t.Fatal("login returned empty token")
	}
	return out["token"]
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("valid credentials", func(t *testing.T) {
		loginToken(t, srv)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/login", "",
			map[string]string{"username": "demo", "password": "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/login", "",
			map[string]string{"username": "ghost", "password": "x"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/transactions", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
}

func createTransaction(t *testing.T, srv *Server, token string, body map[string]any) transactionResponse {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return out
}

func TestTransactionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	created := createTransaction(t, srv, token, map[string]any{
		"type":     "expense",
		"amount":   "450.50",
		"title":    "Dinner",
		"category": "food",
		"date":     "2025-05-10",
	})
	if created.Amount != 450.5 || created.Category != "food" {
		t.Errorf("created = %+v", created)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/transactions", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad type", map[string]any{"type": "loan", "amount": "10", "title": "x", "category": "food", "date": "2025-05-10"}},
		{"bad amount", map[string]any{"type": "expense", "amount": "-10", "title": "x", "category": "food", "date": "2025-05-10"}},
		{"missing title", map[string]any{"type": "expense", "amount": "10", "category": "food", "date": "2025-05-10"}},
		{"bad date", map[string]any{"type": "expense", "amount": "10", "title": "x", "category": "food", "date": "soon"}},
		{"recurring without frequency", map[string]any{"type": "expense", "amount": "10", "title": "x", "category": "food", "date": "2025-05-10", "isRecurring": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/transactions", token, tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDashboardSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	today := time.Now().Format("2006-01-02")
	createTransaction(t, srv, token, map[string]any{
		"type": "income", "amount": "50000", "title": "Salary", "category": "salary", "date": today,
	})
	createTransaction(t, srv, token, map[string]any{
		"type": "expense", "amount": "20000", "title": "Rent", "category": "rent", "date": today,
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		MonthlyIncome   float64           `json:"monthlyIncome"`
		MonthlyExpenses float64           `json:"monthlyExpenses"`
		NetSavings      float64           `json:"netSavings"`
		SavingsRate     float64           `json:"savingsRate"`
		Formatted       map[string]string `json:"formatted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if out.MonthlyIncome != 50000 || out.MonthlyExpenses != 20000 {
		t.Errorf("summary = %+v", out)
	}
	if out.SavingsRate != 60 {
		t.Errorf("SavingsRate = %v, want 60", out.SavingsRate)
	}
	if out.Formatted["monthlyIncome"] != "₹50,000" {
		t.Errorf("formatted income = %q, want ₹50,000", out.Formatted["monthlyIncome"])
	}
}

func TestDashboardBreakdown(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	today := time.Now().Format("2006-01-02")
	createTransaction(t, srv, token, map[string]any{
		"type": "expense", "amount": "150", "title": "Lunch", "category": "food", "date": today,
	})
	createTransaction(t, srv, token, map[string]any{
		"type": "expense", "amount": "50", "title": "Petrol", "category": "fuel", "date": today,
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard/breakdown", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("breakdown status = %d", rec.Code)
	}
	var out []breakdownEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode breakdown: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("breakdown entries = %d, want 2", len(out))
	}
	if out[0].Category != "food" || out[0].Percentage != 75 || out[0].Label == "" {
		t.Errorf("first entry = %+v", out[0])
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard/breakdown?type=loan", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", rec.Code)
	}
}

func TestDashboardTrend(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard/trend", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trend status = %d", rec.Code)
	}
	var out []struct {
		Month  string  `json:"month"`
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if len(out) != 6 {
		t.Errorf("trend points = %d, want 6", len(out))
	}
}

func TestDashboardHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard/health", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var out struct {
		HealthScore int `json:"healthScore"`
		SavingsRate struct {
			Score    int    `json:"score"`
			Category string `json:"category"`
		} `json:"savingsRate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	// No data at all: poor across the board.
	if out.SavingsRate.Score != 30 || out.SavingsRate.Category != "poor" {
		t.Errorf("savings sub-score = %+v", out.SavingsRate)
	}
	if out.HealthScore != 18 {
		t.Errorf("health score = %d, want 18", out.HealthScore)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/settings", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get settings status = %d", rec.Code)
	}
	var out settingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if out.CurrencyCode != "INR" || out.CurrencySymbol != "₹" {
		t.Errorf("settings = %+v", out)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/settings", token,
		map[string]string{"currencyCode": "usd"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update settings status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if out.CurrencyCode != "USD" || out.CurrencySymbol != "$" {
		t.Errorf("updated settings = %+v", out)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/settings", token,
		map[string]string{"currencyCode": "12"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad currency status = %d, want 422", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/categories", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rec.Code)
	}
	var all []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("empty category registry")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/categories?type=income", token, nil)
	var income []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &income); err != nil {
		t.Fatalf("decode income categories: %v", err)
	}
	if len(income) == 0 || len(income) >= len(all) {
		t.Errorf("income filter returned %d of %d", len(income), len(all))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/categories?type=loan", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", rec.Code)
	}
}

func TestGoalLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/goals", token, map[string]any{
		"name":          "Emergency fund",
		"targetAmount":  "600000",
		"currentAmount": "150000",
		"category":      "emergency-fund",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created goalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if created.Progress != 25 {
		t.Errorf("progress = %v, want 25", created.Progress)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/goals/"+created.ID, token, map[string]any{
		"name":          "Emergency fund",
		"targetAmount":  "600000",
		"currentAmount": "300000",
		"category":      "emergency-fund",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update goal status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/goals/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete goal status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/goals/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted goal status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}
}
