package model

import (
	"fmt"
	"strings"
)

// Category is the investigator-facing tag of a transaction.
// The zero value means "not yet classified".
type Category string

const (
	CategoryLivingExpense  Category = "生活費"
	CategoryAssetFormation Category = "資産形成"
	CategorySuspectedGift  Category = "贈与疑い"
	CategoryOther          Category = "その他"
)

// Categories lists every label in the order free-text answers are scanned.
var Categories = []Category{
	CategoryLivingExpense,
	CategoryAssetFormation,
	CategorySuspectedGift,
	CategoryOther,
}

var slugs = map[Category]string{
	CategoryLivingExpense:  "living-expense",
	CategoryAssetFormation: "asset-formation",
	CategorySuspectedGift:  "suspected-gift",
	CategoryOther:          "other",
}

// IsZero reports whether the category is unset.
func (c Category) IsZero() bool { return c == "" }

// Valid reports whether c is one of the four known labels.
func (c Category) Valid() bool {
	_, ok := slugs[c]
	return ok
}

// Slug returns the ASCII name of the category, e.g. "suspected-gift".
func (c Category) Slug() string { return slugs[c] }

// ParseCategory accepts either the Japanese label or its slug.
// An empty string parses to the zero Category.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for c, slug := range slugs {
		if s == string(c) || strings.EqualFold(s, slug) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
