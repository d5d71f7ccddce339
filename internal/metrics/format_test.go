package metrics

import "testing"

func TestCurrencySymbol(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"INR", "₹"},
		{"USD", "$"},
		{"EUR", "€"},
		{"GBP", "£"},
		{"JPY", "£"}, // unknown codes fall back to the pound symbol
		{"", "£"},
	}
	for _, tt := range tests {
		if got := CurrencySymbol(tt.code); got != tt.want {
			t.Errorf("CurrencySymbol(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{"small", 500, "INR", "₹500"},
		{"thousand", 1000, "INR", "₹1,000"},
		{"lakh", 123456, "INR", "₹1,23,456"},
		{"ten lakh", 1234567, "INR", "₹12,34,567"},
		{"crore", 12345678, "INR", "₹1,23,45,678"},
		{"fraction shown", 1234.56, "INR", "₹1,234.56"},
		{"whole amount hides fraction", 1234.00, "INR", "₹1,234"},
		{"fraction rounds to paise", 99.999, "INR", "₹100"},
		{"negative", -1234.5, "INR", "-₹1,234.50"},
		{"usd symbol", 1000, "USD", "$1,000"},
		{"unknown code", 1000, "XXX", "£1,000"},
		{"zero", 0, "INR", "₹0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.amount, tt.code); got != tt.want {
				t.Errorf("FormatCurrency(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
			}
		})
	}
}
