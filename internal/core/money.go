// Package core defines the domain model shared by storage, services and the
// HTTP layer: money amounts, transactions, goals and their validation rules.
//
// Amounts are held as integer paise to keep arithmetic exact; float64 values
// only appear in derived metrics and display formatting.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer paise (1/100 rupee).
type Money struct {
	Paise int64
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Rupees returns the rupee value as a float64 for display and derived
// metrics. Use paise for anything that must stay exact.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// ParseDecimalToPaise converts a decimal string to paise with half-up
// rounding on the third decimal place. Both dot and comma separators are
// accepted. Returns an error for invalid formats, negative values, or zero
// amounts.
//
// Examples:
//
//	ParseDecimalToPaise("12.34") -> 1234, nil
//	ParseDecimalToPaise("12,34") -> 1234, nil
//	ParseDecimalToPaise("12.345") -> 1234, nil (rounds down)
//	ParseDecimalToPaise("12.346") -> 1235, nil (rounds up)
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; half-up rounding on the third
	var frac int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		frac = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			frac += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	paise := iv*100 + frac
	if paise <= 0 {
		return 0, ErrInvalidAmount
	}
	return paise, nil
}
