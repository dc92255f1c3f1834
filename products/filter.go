package products

import (
	"math"
	"slices"
	"sort"
	"strings"

	"storefront/models"

	"github.com/shopspring/decimal"
)

// DefaultMaxPrice is the upper bound of the price slider.
const DefaultMaxPrice = 3000

// SortMode selects the comparator applied after filtering.
type SortMode string

const (
	SortRelevance  SortMode = "relevance"
	SortPriceAsc   SortMode = "price-asc"
	SortPriceDesc  SortMode = "price-desc"
	SortRatingDesc SortMode = "rating-desc"
)

// ParseSortMode maps a wire value to a SortMode. Unknown values mean relevance.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(s); m {
	case SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return m
	default:
		return SortRelevance
	}
}

// PriceRange is an inclusive price band.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// FilterState holds the user-selected constraints. Category and Brand are sets kept in
// selection order; an empty set places no constraint.
type FilterState struct {
	Category   []string   `json:"category"`
	Brand      []string   `json:"brand"`
	Rating     float64    `json:"rating"`
	PriceRange PriceRange `json:"priceRange"`
}

// DefaultFilters is the unconstrained filter state.
func DefaultFilters() FilterState {
	return FilterState{
		Category: []string{},
		Brand:    []string{},
		PriceRange: PriceRange{
			Min: decimal.Zero,
			Max: decimal.NewFromInt(DefaultMaxPrice),
		},
	}
}

// ToggleCategory adds the category if absent and removes it otherwise.
func (f FilterState) ToggleCategory(c string) FilterState {
	f.Category = toggle(f.Category, c)
	return f
}

// ToggleBrand adds the brand if absent and removes it otherwise.
func (f FilterState) ToggleBrand(b string) FilterState {
	f.Brand = toggle(f.Brand, b)
	return f
}

// WithRating sets the minimum rating, clamped to 0..4. NaN resets it to 0.
func (f FilterState) WithRating(r float64) FilterState {
	if math.IsNaN(r) {
		r = 0
	}
	f.Rating = min(max(r, 0), 4)
	return f
}

// WithPriceRange sets the price band. A reversed band is swapped.
func (f FilterState) WithPriceRange(lo, hi decimal.Decimal) FilterState {
	if lo.GreaterThan(hi) {
		lo, hi = hi, lo
	}
	f.PriceRange = PriceRange{Min: lo, Max: hi}
	return f
}

func toggle(set []string, v string) []string {
	if i := slices.Index(set, v); i >= 0 {
		out := make([]string, 0, len(set)-1)
		out = append(out, set[:i]...)
		return append(out, set[i+1:]...)
	}
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, v)
}

// Matches reports whether p satisfies every predicate of f and the title query.
func (f FilterState) Matches(p models.Product, query string) bool {
	if !strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
		return false
	}
	if len(f.Category) > 0 && !slices.Contains(f.Category, p.Category) {
		return false
	}
	if len(f.Brand) > 0 && !slices.Contains(f.Brand, p.Brand) {
		return false
	}
	if p.Rating < f.Rating {
		return false
	}
	return p.Price.GreaterThanOrEqual(f.PriceRange.Min) && p.Price.LessThanOrEqual(f.PriceRange.Max)
}

// Apply filters the catalog and sorts the result. The input slice is left untouched and
// nothing is cached between calls.
func Apply(catalog []models.Product, f FilterState, mode SortMode, query string) []models.Product {
	out := make([]models.Product, 0, len(catalog))
	for _, p := range catalog {
		if f.Matches(p, query) {
			out = append(out, p)
		}
	}

	var less func(a, b models.Product) bool
	switch mode {
	case SortPriceAsc:
		less = func(a, b models.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b models.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRatingDesc:
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Categories lists distinct categories in first-seen order.
func Categories(catalog []models.Product) []string {
	return distinct(catalog, func(p models.Product) string { return p.Category })
}

// Brands lists distinct brands in first-seen order.
func Brands(catalog []models.Product) []string {
	return distinct(catalog, func(p models.Product) string { return p.Brand })
}

func distinct(catalog []models.Product, key func(models.Product) string) []string {
	seen := make(map[string]struct{}, len(catalog))
	out := []string{}
	for _, p := range catalog {
		k := key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
