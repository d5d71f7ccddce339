package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a bounded JSON body into dst and rejects trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseDate accepts a date-only or full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type createTransactionRequest struct {
	Type                string   `json:"type" validate:"required,oneof=income expense investment"`
	Amount              string   `json:"amount" validate:"required"`
	Title               string   `json:"title" validate:"required,max=200"`
	Category            string   `json:"category" validate:"required,max=100"`
	Date                string   `json:"date" validate:"required"`
	Notes               string   `json:"notes" validate:"max=1000"`
	IsRecurring         bool     `json:"isRecurring"`
	RecurrenceFrequency string   `json:"recurrenceFrequency" validate:"omitempty,oneof=daily weekly monthly yearly"`
	IsSplit             bool     `json:"isSplit"`
	SplitWith           []string `json:"splitWith" validate:"omitempty,max=20,dive,max=100"`
}

type goalRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	TargetAmount  string `json:"targetAmount" validate:"required"`
	CurrentAmount string `json:"currentAmount"`
	TargetDate    string `json:"targetDate"`
	Category      string `json:"category" validate:"required,max=100"`
}

type settingsRequest struct {
	CurrencyCode string `json:"currencyCode" validate:"required,len=3,alpha"`
}
