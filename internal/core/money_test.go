package core

import "testing"

func TestParseDecimalToPaise(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "12", 1200, false},
		{"dot decimal", "12.34", 1234, false},
		{"comma decimal", "12,34", 1234, false},
		{"one decimal digit", "12.3", 1230, false},
		{"rounds down on third digit", "12.344", 1234, false},
		{"rounds up on third digit", "12.346", 1235, false},
		{"leading dot", ".50", 50, false},
		{"whitespace trimmed", "  7.25  ", 725, false},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"zero decimal", "0.00", 0, true},
		{"negative", "-5", 0, true},
		{"plus sign", "+5", 0, true},
		{"letters", "abc", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"mixed digits", "12a.50", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToPaise(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToPaise(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToPaise(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToPaise(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyRupees(t *testing.T) {
	m := Money{Paise: 123456}
	if got := m.Rupees(); got != 1234.56 {
		t.Errorf("Rupees() = %v, want 1234.56", got)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Paise: 100}).Validate(); err != nil {
		t.Errorf("positive amount should validate, got %v", err)
	}
	if err := (Money{Paise: 0}).Validate(); err == nil {
		t.Error("zero amount should not validate")
	}
	if err := (Money{Paise: -5}).Validate(); err == nil {
		t.Error("negative amount should not validate")
	}
}
