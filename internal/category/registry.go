// Package category holds the static registry of spending categories and
// their display metadata. The table is fixed at compile time; Validate is
// run at server startup so a bad edit fails fast instead of surfacing as a
// missing icon in a client.
package category

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Category describes one entry of the registry.
type Category struct {
	ID    string                 `json:"id"`
	Label string                 `json:"label"`
	Icon  string                 `json:"icon"`
	Color string                 `json:"color"`
	Kinds []core.TransactionType `json:"kinds"`
}

// FallbackID is returned by Lookup for unknown category IDs.
const FallbackID = "other"

var registry = []Category{
	{ID: "salary", Label: "Salary", Icon: "briefcase", Color: "#16a34a", Kinds: kinds(core.Income)},
	{ID: "freelance", Label: "Freelance", Icon: "laptop", Color: "#0d9488", Kinds: kinds(core.Income)},
	{ID: "business", Label: "Business", Icon: "store", Color: "#059669", Kinds: kinds(core.Income)},
	{ID: "rental", Label: "Rental Income", Icon: "home", Color: "#10b981", Kinds: kinds(core.Income)},
	{ID: "interest", Label: "Interest", Icon: "percent", Color: "#34d399", Kinds: kinds(core.Income)},
	{ID: "gift", Label: "Gift", Icon: "gift", Color: "#a855f7", Kinds: kinds(core.Income, core.Expense)},

	{ID: "food", Label: "Food & Dining", Icon: "utensils", Color: "#f97316", Kinds: kinds(core.Expense)},
	{ID: "groceries", Label: "Groceries", Icon: "shopping-cart", Color: "#fb923c", Kinds: kinds(core.Expense)},
	{ID: "fuel", Label: "Fuel", Icon: "fuel", Color: "#ef4444", Kinds: kinds(core.Expense)},
	{ID: "transport", Label: "Transport", Icon: "bus", Color: "#f59e0b", Kinds: kinds(core.Expense)},
	{ID: "rent", Label: "Rent", Icon: "key", Color: "#dc2626", Kinds: kinds(core.Expense)},
	{ID: "utilities", Label: "Utilities", Icon: "zap", Color: "#eab308", Kinds: kinds(core.Expense)},
	{ID: "internet", Label: "Internet & Phone", Icon: "wifi", Color: "#3b82f6", Kinds: kinds(core.Expense)},
	{ID: "healthcare", Label: "Healthcare", Icon: "heart-pulse", Color: "#ec4899", Kinds: kinds(core.Expense)},
	{ID: "education", Label: "Education", Icon: "graduation-cap", Color: "#6366f1", Kinds: kinds(core.Expense)},
	{ID: "entertainment", Label: "Entertainment", Icon: "clapperboard", Color: "#8b5cf6", Kinds: kinds(core.Expense)},
	{ID: "shopping", Label: "Shopping", Icon: "shopping-bag", Color: "#d946ef", Kinds: kinds(core.Expense)},
	{ID: "travel", Label: "Travel", Icon: "plane", Color: "#06b6d4", Kinds: kinds(core.Expense)},
	{ID: "insurance", Label: "Insurance", Icon: "shield", Color: "#64748b", Kinds: kinds(core.Expense)},
	{ID: "emi", Label: "EMI", Icon: "landmark", Color: "#b91c1c", Kinds: kinds(core.Expense)},
	{ID: "subscriptions", Label: "Subscriptions", Icon: "repeat", Color: "#7c3aed", Kinds: kinds(core.Expense)},

	{ID: "mutual-funds", Label: "Mutual Funds", Icon: "trending-up", Color: "#0ea5e9", Kinds: kinds(core.Investment)},
	{ID: "sip", Label: "SIP", Icon: "calendar-clock", Color: "#0284c7", Kinds: kinds(core.Investment)},
	{ID: "stocks", Label: "Stocks", Icon: "candlestick-chart", Color: "#2563eb", Kinds: kinds(core.Investment)},
	{ID: "fd", Label: "Fixed Deposit", Icon: "vault", Color: "#1d4ed8", Kinds: kinds(core.Investment)},
	{ID: "ppf", Label: "PPF", Icon: "piggy-bank", Color: "#1e40af", Kinds: kinds(core.Investment)},
	{ID: "gold", Label: "Gold", Icon: "coins", Color: "#ca8a04", Kinds: kinds(core.Investment)},
	{ID: "crypto", Label: "Crypto", Icon: "bitcoin", Color: "#f59e0b", Kinds: kinds(core.Investment)},

	{ID: FallbackID, Label: "Other", Icon: "circle-ellipsis", Color: "#6b7280", Kinds: kinds(core.Income, core.Expense, core.Investment)},
}

var byID = func() map[string]Category {
	m := make(map[string]Category, len(registry))
	for _, c := range registry {
		m[c.ID] = c
	}
	return m
}()

// Lookup returns the category for id, falling back to the catch-all entry.
func Lookup(id string) Category {
	if c, ok := byID[id]; ok {
		return c
	}
	return byID[FallbackID]
}

// Known reports whether id is a registered category.
func Known(id string) bool {
	_, ok := byID[id]
	return ok
}

// All returns the registry, optionally filtered to one transaction type.
func All(typ core.TransactionType) []Category {
	if typ == "" {
		out := make([]Category, len(registry))
		copy(out, registry)
		return out
	}
	var out []Category
	for _, c := range registry {
		for _, k := range c.Kinds {
			if k == typ {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Validate checks the registry for duplicate IDs, missing metadata, and
// invalid transaction types. Called once at startup.
func Validate() error {
	seen := map[string]struct{}{}
	for _, c := range registry {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("category with empty id (label %q)", c.Label)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Label == "" || c.Icon == "" || c.Color == "" {
			return fmt.Errorf("category %q missing display metadata", c.ID)
		}
		if len(c.Kinds) == 0 {
			return fmt.Errorf("category %q applies to no transaction type", c.ID)
		}
		for _, k := range c.Kinds {
			if !k.Valid() {
				return fmt.Errorf("category %q has invalid type %q", c.ID, k)
			}
		}
	}
	if _, ok := seen[FallbackID]; !ok {
		return fmt.Errorf("registry missing fallback category %q", FallbackID)
	}
	return nil
}

func kinds(ts ...core.TransactionType) []core.TransactionType {
	return ts
}
