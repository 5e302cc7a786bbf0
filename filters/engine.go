package filters

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/princinho/catalogviewer/models"
)

// ComputeOptionSets collects distinct categories and brands in the order
// they are first seen. Empty values are skipped.
func ComputeOptionSets(products []models.Product) models.OptionSets {
	opts := models.OptionSets{Categories: []string{}, Brands: []string{}}
	seenCat := make(map[string]struct{})
	seenBrand := make(map[string]struct{})

	for _, p := range products {
		if p.Category != "" {
			if _, ok := seenCat[p.Category]; !ok {
				seenCat[p.Category] = struct{}{}
				opts.Categories = append(opts.Categories, p.Category)
			}
		}
		if p.Brand != "" {
			if _, ok := seenBrand[p.Brand]; !ok {
				seenBrand[p.Brand] = struct{}{}
				opts.Brands = append(opts.Brands, p.Brand)
			}
		}
	}
	return opts
}

// CategoryLabel upper-cases the first letter only ("home-decoration" ->
// "Home-decoration").
func CategoryLabel(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if r == utf8.RuneError {
		return category
	}
	return string(unicode.ToUpper(r)) + category[size:]
}

// MatchesPrice reports whether price falls in band. Unknown bands match
// everything.
func MatchesPrice(band models.PriceBand, price float64) bool {
	switch band {
	case models.PriceUnder10:
		return price < 10
	case models.Price10To50:
		return price >= 10 && price <= 50
	case models.Price50To100:
		return price > 50 && price <= 100
	case models.PriceOver100:
		return price > 100
	}
	return true
}

func searchText(p models.Product) string {
	fields := make([]string, 0, 4+len(p.Tags))
	fields = append(fields, p.Title, p.Description, p.Brand, p.Category)
	fields = append(fields, p.Tags...)
	return strings.Join(fields, " ")
}

// ApplyFilters returns the products passing every active predicate, in their
// original order. It always starts from the full list.
func ApplyFilters(products []models.Product, state models.FilterState) []models.Product {
	lower := cases.Lower(language.Und)
	term := lower.String(strings.TrimSpace(state.SearchTerm))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if term != "" && !strings.Contains(lower.String(searchText(p)), term) {
			continue
		}
		if state.Category != "" && p.Category != state.Category {
			continue
		}
		if state.Brand != "" && p.Brand != state.Brand {
			continue
		}
		if !MatchesPrice(state.PriceBand, p.Price) {
			continue
		}
		out = append(out, p)
	}
	return out
}
