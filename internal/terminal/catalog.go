package terminal

import (
	"strings"

	"wilpos-terminal/internal/domain"
)

// MaxVisibleProducts caps how many matches are shown at once.
const MaxVisibleProducts = 50

// Matches reports whether p matches query: case-insensitive substring of the
// name, or exact substring of the barcode. An empty query matches everything.
func Matches(p domain.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
		return true
	}
	return p.Barcode != "" && strings.Contains(p.Barcode, query)
}

// Filter returns every product matching query, in catalog order.
func Filter(products []domain.Product, query string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, query) {
			out = append(out, p)
		}
	}
	return out
}

// Visible returns the first MaxVisibleProducts matches of query.
func Visible(products []domain.Product, query string) []domain.Product {
	matches := Filter(products, query)
	if len(matches) > MaxVisibleProducts {
		matches = matches[:MaxVisibleProducts]
	}
	return matches
}
