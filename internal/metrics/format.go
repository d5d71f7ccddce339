package metrics

import (
	"math"
	"strconv"
	"strings"
)

// currencySymbols maps supported ISO 4217 codes to their prefix symbol.
// Unrecognized codes fall back to the pound symbol, matching the behavior
// the web client shipped with.
var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// CurrencySymbol returns the display symbol for a currency code.
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return "£"
}

// FormatCurrency renders an amount with Indian digit grouping (groups of two
// after the first three digits, e.g. 12,34,567) prefixed by the currency
// symbol. Fractional paise are shown with two decimals only when present.
//
// The amount is rounded half-up to whole paise first. Callers pass values
// derived from paise-backed Money, so this recovers the stored amount
// exactly despite float64 representation error; inputs carrying more than
// two decimals are rounded to paise rather than rendered in full.
func FormatCurrency(amount float64, code string) string {
	sym := CurrencySymbol(code)

	neg := math.Signbit(amount)
	abs := math.Abs(amount)

	// Round to paise so grouping operates on a stable integer part.
	paise := int64(abs*100 + 0.5)
	whole := paise / 100
	frac := paise % 100

	s := groupIndian(strconv.FormatInt(whole, 10))
	if frac != 0 {
		s += "." + pad2(frac)
	}
	if neg {
		return "-" + sym + s
	}
	return sym + s
}

// groupIndian inserts lakh/crore separators into a plain digit string.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
